package authorization

import (
	"context"
	"errors"
)

type Service interface {
	// Authorize checks whether actor ("user:<id>" or "system") may perform
	// action on object.
	Authorize(ctx context.Context, actor string, object string, action string) error
	// Permissions lists the object/action pairs granted to a role.
	Permissions(role string) ([][]string, error)
}

var (
	ErrInvalidActor  = errors.New("invalid_actor")
	ErrInvalidObject = errors.New("invalid_object")
	ErrInvalidAction = errors.New("invalid_action")
	ErrForbidden     = errors.New("forbidden")
)
