// Package auth signs admin console operators in and out and reports the
// current identity of a session to watchers.
package auth

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Identity is the signed-in operator.
type Identity struct {
	UserID int    `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Identity  Identity  `json:"identity"`
}

// Provider is the authentication service the admin session guard runs on.
// Watch pushes the identity behind token right away and again on every
// change: nil once the session is signed out or expires.
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Watch(ctx context.Context, token string, fn func(*Identity)) (stop func(), err error)
}
