package demo

import (
	"context"
	"errors"
	"log/slog"
)

// ErrIntentional is raised by FailingMethod to exercise failure advice.
var ErrIntentional = errors.New("intentional failure for after_failure demo")

type User struct {
	ID    int64  `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Email string `json:"email" mapstructure:"email"`
}

// UserAPI is what callers of the user service see.
type UserAPI interface {
	GetUser(ctx context.Context, id int64) (User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	CreateUser(ctx context.Context, name, email string) (User, error)
	FailingMethod(ctx context.Context) error
}

type UserService struct {
	logger *slog.Logger
}

func NewUserService(logger *slog.Logger) *UserService {
	return &UserService{logger: logger}
}

func (s *UserService) GetUser(_ context.Context, id int64) (User, error) {
	return User{ID: id, Name: "Hong Gildong", Email: "hong@example.com"}, nil
}

func (s *UserService) GetAllUsers(_ context.Context) ([]User, error) {
	return []User{
		{ID: 1, Name: "Hong Gildong", Email: "hong@example.com"},
		{ID: 2, Name: "Kim Cheolsu", Email: "kim@example.com"},
	}, nil
}

func (s *UserService) CreateUser(_ context.Context, name, email string) (User, error) {
	return User{ID: 3, Name: name, Email: email}, nil
}

func (s *UserService) FailingMethod(_ context.Context) error {
	return ErrIntentional
}

var _ UserAPI = (*UserService)(nil)
