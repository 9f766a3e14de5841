package demo

import (
	"context"

	"github.com/aretw0/weft/pkg/domain"
)

// Qualified target names. The first segment is the layer rules select on.
const (
	TargetGetUser       = "service.UserService.GetUser"
	TargetGetAllUsers   = "service.UserService.GetAllUsers"
	TargetCreateUser    = "service.UserService.CreateUser"
	TargetFailingMethod = "service.UserService.FailingMethod"

	TargetCreateOrder               = "service.OrderService.CreateOrder"
	TargetProcessWithSelfInvocation = "service.OrderService.ProcessWithSelfInvocation"
	TargetProcessNormal             = "service.OrderService.ProcessNormal"

	TargetUserControllerGetUser      = "controller.UserController.GetUser"
	TargetUserControllerGetAllUsers  = "controller.UserController.GetAllUsers"
	TargetUserControllerCreateUser   = "controller.UserController.CreateUser"
	TargetUserControllerTriggerError = "controller.UserController.TriggerError"

	TargetOrderControllerCreateOrder        = "controller.OrderController.CreateOrder"
	TargetOrderControllerSelfInvocationTest = "controller.OrderController.SelfInvocationTest"
)

// TagLogged marks targets whose execution is logged with a description.
const TagLogged = "logged"

type entry struct {
	target domain.Target
	body   domain.Func
}

type idArgs struct {
	ID int64 `mapstructure:"id"`
}

type createUserArgs struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

type noArgs struct{}

// typed adapts a method taking decoded arguments to a target body.
func typed[T any](params []string, fn func(context.Context, T) (any, error)) domain.Func {
	return func(ctx context.Context, args []any) (any, error) {
		var in T
		if err := bind(params, args, &in); err != nil {
			return nil, err
		}
		return fn(ctx, in)
	}
}

func void(fn func(context.Context) error) domain.Func {
	return typed(nil, func(ctx context.Context, _ noArgs) (any, error) {
		return nil, fn(ctx)
	})
}

func target(name string, params []string, tags domain.Tags) domain.Target {
	return domain.Target{Name: name, Params: params, Tags: tags}
}

func serviceEntries(users *UserService, orders *OrderService) []entry {
	idParams := []string{"id"}
	createParams := []string{"name", "email"}

	return []entry{
		{
			target(TargetGetUser, idParams, domain.Tags{TagLogged: "fetch user"}),
			typed(idParams, func(ctx context.Context, in idArgs) (any, error) {
				return users.GetUser(ctx, in.ID)
			}),
		},
		{
			target(TargetGetAllUsers, nil, nil),
			typed(nil, func(ctx context.Context, _ noArgs) (any, error) {
				return users.GetAllUsers(ctx)
			}),
		},
		{
			target(TargetCreateUser, createParams, domain.Tags{TagLogged: "create user"}),
			typed(createParams, func(ctx context.Context, in createUserArgs) (any, error) {
				return users.CreateUser(ctx, in.Name, in.Email)
			}),
		},
		{target(TargetFailingMethod, nil, nil), void(users.FailingMethod)},
		{target(TargetCreateOrder, nil, domain.Tags{TagLogged: "create order"}), void(orders.CreateOrder)},
		{target(TargetProcessWithSelfInvocation, nil, nil), void(orders.ProcessWithSelfInvocation)},
		{target(TargetProcessNormal, nil, nil), void(orders.ProcessNormal)},
	}
}

func controllerEntries(users *UserController, orders *OrderController) []entry {
	idParams := []string{"id"}
	createParams := []string{"name", "email"}

	return []entry{
		{
			target(TargetUserControllerGetUser, idParams, nil),
			typed(idParams, func(ctx context.Context, in idArgs) (any, error) {
				return users.GetUser(ctx, in.ID)
			}),
		},
		{
			target(TargetUserControllerGetAllUsers, nil, nil),
			typed(nil, func(ctx context.Context, _ noArgs) (any, error) {
				return users.GetAllUsers(ctx)
			}),
		},
		{
			target(TargetUserControllerCreateUser, createParams, nil),
			typed(createParams, func(ctx context.Context, in createUserArgs) (any, error) {
				return users.CreateUser(ctx, in.Name, in.Email)
			}),
		},
		{target(TargetUserControllerTriggerError, nil, nil), void(users.TriggerError)},
		{
			target(TargetOrderControllerCreateOrder, nil, nil),
			typed(nil, func(ctx context.Context, _ noArgs) (any, error) {
				return orders.CreateOrder(ctx)
			}),
		},
		{
			target(TargetOrderControllerSelfInvocationTest, nil, nil),
			typed(nil, func(ctx context.Context, _ noArgs) (any, error) {
				return orders.SelfInvocationTest(ctx)
			}),
		},
	}
}
