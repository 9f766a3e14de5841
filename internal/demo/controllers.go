package demo

import (
	"context"
)

// Controller response messages.
const (
	MsgOrderCreated   = "advice applied - check the logs"
	MsgSelfInvocation = "self invocation - CreateOrder advice skipped"
)

type UserControllerAPI interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, name, email string) (User, error)
	TriggerError(ctx context.Context) error
}

type OrderControllerAPI interface {
	CreateOrder(ctx context.Context) (string, error)
	SelfInvocationTest(ctx context.Context) (string, error)
}

// UserController delegates to the user service proxy.
type UserController struct {
	users UserAPI
}

func NewUserController(users UserAPI) *UserController {
	return &UserController{users: users}
}

func (c *UserController) GetUser(ctx context.Context, id int64) (User, error) {
	return c.users.GetUser(ctx, id)
}

func (c *UserController) GetAllUsers(ctx context.Context) ([]User, error) {
	return c.users.GetAllUsers(ctx)
}

func (c *UserController) CreateUser(ctx context.Context, name, email string) (User, error) {
	return c.users.CreateUser(ctx, name, email)
}

func (c *UserController) TriggerError(ctx context.Context) error {
	return c.users.FailingMethod(ctx)
}

// OrderController delegates to the order service proxy.
type OrderController struct {
	orders OrderAPI
}

func NewOrderController(orders OrderAPI) *OrderController {
	return &OrderController{orders: orders}
}

func (c *OrderController) CreateOrder(ctx context.Context) (string, error) {
	if err := c.orders.CreateOrder(ctx); err != nil {
		return "", err
	}
	return MsgOrderCreated, nil
}

func (c *OrderController) SelfInvocationTest(ctx context.Context) (string, error) {
	if err := c.orders.ProcessWithSelfInvocation(ctx); err != nil {
		return "", err
	}
	return MsgSelfInvocation, nil
}

var (
	_ UserControllerAPI  = (*UserController)(nil)
	_ OrderControllerAPI = (*OrderController)(nil)
)
