package demo

import (
	"context"
	"log/slog"
)

// OrderAPI is what callers of the order service see.
type OrderAPI interface {
	CreateOrder(ctx context.Context) error
	ProcessWithSelfInvocation(ctx context.Context) error
	ProcessNormal(ctx context.Context) error
}

type OrderService struct {
	logger *slog.Logger
}

func NewOrderService(logger *slog.Logger) *OrderService {
	return &OrderService{logger: logger}
}

func (s *OrderService) CreateOrder(ctx context.Context) error {
	s.logger.InfoContext(ctx, "order created")
	return nil
}

// ProcessWithSelfInvocation calls CreateOrder on the raw receiver, not the proxy.
func (s *OrderService) ProcessWithSelfInvocation(ctx context.Context) error {
	s.logger.InfoContext(ctx, "process with self invocation: start")
	if err := s.CreateOrder(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "process with self invocation: end")
	return nil
}

func (s *OrderService) ProcessNormal(ctx context.Context) error {
	s.logger.InfoContext(ctx, "process normal")
	return nil
}

var _ OrderAPI = (*OrderService)(nil)
