package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

// UserStore is the admin user access the service needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
	TouchLogin(ctx context.Context, id int) error
}

// Service authenticates operators with bcrypt password hashes and issues
// signed session tokens.
type Service struct {
	users       UserStore
	revocations RevocationStore
	secret      []byte
	ttl         time.Duration

	mu       sync.Mutex
	watchers map[string]map[*watcher]struct{}
}

type watcher struct {
	signedOut chan struct{}
	once      sync.Once
}

func (w *watcher) signOut() { w.once.Do(func() { close(w.signedOut) }) }

// NewService creates a Service. Tokens stay valid for ttl.
func NewService(users UserStore, revocations RevocationStore, secret string, ttl time.Duration) *Service {
	return &Service{
		users:       users,
		revocations: revocations,
		secret:      []byte(secret),
		ttl:         ttl,
		watchers:    make(map[string]map[*watcher]struct{}),
	}
}

// SignIn checks the password and issues a session token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().Str("email", email).Msg("Login with unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get admin user: %w", err)
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return nil, ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return nil, ErrInvalidCredentials
	}

	token, claims, err := utils.GenerateJWT(s.secret, s.ttl, user.ID, user.Email, user.Name)
	if err != nil {
		return nil, err
	}

	if err := s.users.TouchLogin(ctx, user.ID); err != nil {
		log.Warn().Err(err).Int("user_id", user.ID).Msg("Failed to record login time")
	}
	log.Info().Str("email", email).Msg("Login successful")

	return &Session{
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
		Identity:  Identity{UserID: user.ID, Email: user.Email, Name: user.Name},
	}, nil
}

// SignOut revokes token and tells its watchers the session ended.
func (s *Service) SignOut(ctx context.Context, token string) error {
	claims, err := utils.ValidateJWT(s.secret, token)
	if err != nil {
		return ErrInvalidToken
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.revocations.Revoke(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	log.Info().Str("email", claims.Email).Msg("Logout")

	s.mu.Lock()
	for w := range s.watchers[claims.ID] {
		w.signOut()
	}
	s.mu.Unlock()
	return nil
}

// Authenticate returns the identity behind a live token.
func (s *Service) Authenticate(ctx context.Context, token string) (*Identity, error) {
	id, _, err := s.authenticate(ctx, token)
	return id, err
}

func (s *Service) authenticate(ctx context.Context, token string) (*Identity, *utils.Claims, error) {
	if token == "" {
		return nil, nil, ErrInvalidToken
	}
	claims, err := utils.ValidateJWT(s.secret, token)
	if err != nil {
		return nil, nil, ErrInvalidToken
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrInvalidToken
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email, Name: claims.Name}, claims, nil
}

// Watch pushes the identity behind token, then nil when it is signed out
// or expires. A token that is already dead pushes nil once.
func (s *Service) Watch(ctx context.Context, token string, fn func(*Identity)) (func(), error) {
	id, claims, err := s.authenticate(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrInvalidToken) {
			return nil, err
		}
		fn(nil)
		return func() {}, nil
	}

	w := &watcher{signedOut: make(chan struct{})}
	s.mu.Lock()
	if s.watchers[claims.ID] == nil {
		s.watchers[claims.ID] = make(map[*watcher]struct{})
	}
	s.watchers[claims.ID][w] = struct{}{}
	s.mu.Unlock()

	fn(id)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer s.unwatch(claims.ID, w)

		expiry := time.NewTimer(time.Until(claims.ExpiresAt.Time))
		defer expiry.Stop()

		select {
		case <-ctx.Done():
			return
		case <-w.signedOut:
		case <-expiry.C:
		}
		fn(nil)
	}()

	return func() {
		cancel()
		<-done
	}, nil
}

func (s *Service) unwatch(jti string, w *watcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.watchers[jti], w)
	if len(s.watchers[jti]) == 0 {
		delete(s.watchers, jti)
	}
}

// CreateAdmin stores a new active operator.
func (s *Service) CreateAdmin(ctx context.Context, email, password, name string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.AdminUser{
		Email:        strings.TrimSpace(strings.ToLower(email)),
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}
	return s.users.Create(ctx, user)
}

// EnsureAdmin creates the operator unless the email is already taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, password, name string) error {
	_, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get admin user: %w", err)
	}
	if err := s.CreateAdmin(ctx, email, password, name); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	log.Info().Str("email", email).Msg("Bootstrap admin user created")
	return nil
}

var _ Provider = (*Service)(nil)
