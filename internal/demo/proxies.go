package demo

import (
	"context"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/ports"
)

// Proxies route every method through an Invoker so matched advice runs.

type userServiceProxy struct{ inv ports.Invoker }

func (p userServiceProxy) GetUser(ctx context.Context, id int64) (User, error) {
	return weft.Call[User](ctx, p.inv, TargetGetUser, id)
}

func (p userServiceProxy) GetAllUsers(ctx context.Context) ([]User, error) {
	return weft.Call[[]User](ctx, p.inv, TargetGetAllUsers)
}

func (p userServiceProxy) CreateUser(ctx context.Context, name, email string) (User, error) {
	return weft.Call[User](ctx, p.inv, TargetCreateUser, name, email)
}

func (p userServiceProxy) FailingMethod(ctx context.Context) error {
	return weft.Exec(ctx, p.inv, TargetFailingMethod)
}

type orderServiceProxy struct{ inv ports.Invoker }

func (p orderServiceProxy) CreateOrder(ctx context.Context) error {
	return weft.Exec(ctx, p.inv, TargetCreateOrder)
}

func (p orderServiceProxy) ProcessWithSelfInvocation(ctx context.Context) error {
	return weft.Exec(ctx, p.inv, TargetProcessWithSelfInvocation)
}

func (p orderServiceProxy) ProcessNormal(ctx context.Context) error {
	return weft.Exec(ctx, p.inv, TargetProcessNormal)
}

type userControllerProxy struct{ inv ports.Invoker }

func (p userControllerProxy) GetUser(ctx context.Context, id int64) (User, error) {
	return weft.Call[User](ctx, p.inv, TargetUserControllerGetUser, id)
}

func (p userControllerProxy) GetAllUsers(ctx context.Context) ([]User, error) {
	return weft.Call[[]User](ctx, p.inv, TargetUserControllerGetAllUsers)
}

func (p userControllerProxy) CreateUser(ctx context.Context, name, email string) (User, error) {
	return weft.Call[User](ctx, p.inv, TargetUserControllerCreateUser, name, email)
}

func (p userControllerProxy) TriggerError(ctx context.Context) error {
	return weft.Exec(ctx, p.inv, TargetUserControllerTriggerError)
}

type orderControllerProxy struct{ inv ports.Invoker }

func (p orderControllerProxy) CreateOrder(ctx context.Context) (string, error) {
	return weft.Call[string](ctx, p.inv, TargetOrderControllerCreateOrder)
}

func (p orderControllerProxy) SelfInvocationTest(ctx context.Context) (string, error) {
	return weft.Call[string](ctx, p.inv, TargetOrderControllerSelfInvocationTest)
}

var (
	_ UserAPI            = userServiceProxy{}
	_ OrderAPI           = orderServiceProxy{}
	_ UserControllerAPI  = userControllerProxy{}
	_ OrderControllerAPI = orderControllerProxy{}
)
