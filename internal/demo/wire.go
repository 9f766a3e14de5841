package demo

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/weft"
)

// App holds the proxies handed to callers. Raw services never leave Wire.
type App struct {
	Users        UserControllerAPI
	Orders       OrderControllerAPI
	UserService  UserAPI
	OrderService OrderAPI
}

// Wire registers the demo services and controllers on eng and returns their proxies.
// Controllers receive service proxies, so a controller call crosses the dispatcher twice.
func Wire(eng *weft.Engine, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	app := &App{
		UserService:  userServiceProxy{inv: eng},
		OrderService: orderServiceProxy{inv: eng},
		Users:        userControllerProxy{inv: eng},
		Orders:       orderControllerProxy{inv: eng},
	}

	users := NewUserService(logger)
	orders := NewOrderService(logger)
	entries := serviceEntries(users, orders)
	entries = append(entries, controllerEntries(
		NewUserController(app.UserService),
		NewOrderController(app.OrderService),
	)...)

	for _, e := range entries {
		if err := eng.Register(e.target, e.body); err != nil {
			return nil, fmt.Errorf("register %s: %w", e.target.Name, err)
		}
	}
	return app, nil
}
