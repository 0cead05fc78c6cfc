// Package users holds the User record model and the store implementations
// behind the CRUD handlers.
package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
)

// User is a stored record. ID is assigned by the store on create and never
// changes afterwards.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

var (
	ErrNotFound     = errors.New("user not found")
	ErrInvalidName  = errors.New("name must not be empty")
	ErrInvalidEmail = errors.New("email address is invalid")
)

// Store is the persistence collaborator for User records. Implementations
// must serialize conflicting reads and writes per record.
type Store interface {
	Create(ctx context.Context, name, email string) (User, error)
	Get(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, id int64, name, email string) (User, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

// Validate checks the payload shape shared by create and update: non-blank
// name and a syntactically valid bare email address.
func Validate(name, email string) error {
	if strings.TrimSpace(name) == "" {
		return ErrInvalidName
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Name != "" || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}
