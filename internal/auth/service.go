package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/crawlingsloth/lonumirus/internal/user"
)

// ErrInvalidCredentials covers every login failure: unknown email, inactive
// account, wrong password. Callers get no detail beyond "login failed".
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrRoleSwitchDenied is returned when a non-admin account asks for a role
// preview.
var ErrRoleSwitchDenied = errors.New("role switch not permitted")

type Session struct {
	User  *user.User `json:"user"`
	Token string     `json:"token"`
}

type Service interface {
	Login(ctx context.Context, email, password string) (*Session, error)
	SwitchRole(ctx context.Context, claims *Claims, role user.Role) (*Session, error)
	CurrentUser(ctx context.Context, claims *Claims) (*user.User, error)
}

type service struct {
	users  user.Repository
	tokens *TokenManager
}

func NewService(users user.Repository, tokens *TokenManager) Service {
	return &service{users: users, tokens: tokens}
}

func (s *service) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		log.Error().Err(err).Msg("auth: failed to look up user for login")
		return nil, fmt.Errorf("auth: failed to look up user: %w", err)
	}

	if !u.Active {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u, u.Role)
	if err != nil {
		return nil, err
	}

	log.Info().Stringer("user_id", u.ID).Str("role", u.Role.String()).Msg("auth: user logged in")
	return &Session{User: u, Token: token}, nil
}

// SwitchRole reissues the session token with a different effective role.
// Demo feature: the stored user record keeps its real role; only the session
// sees the new one. The stored role must be admin, so an admin previewing as
// customer can always switch back while a customer can never escalate.
func (s *service) SwitchRole(ctx context.Context, claims *Claims, role user.Role) (*Session, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("auth: invalid role %q", role)
	}

	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: failed to look up user for role switch: %w", err)
	}

	if u.Role != user.RoleAdmin {
		return nil, ErrRoleSwitchDenied
	}

	token, err := s.tokens.Issue(u, role)
	if err != nil {
		return nil, err
	}

	// The returned user reflects the session view, not the stored record.
	sessionUser := *u
	sessionUser.Role = role

	log.Info().Stringer("user_id", u.ID).Str("role", role.String()).Msg("auth: session role switched")
	return &Session{User: &sessionUser, Token: token}, nil
}

func (s *service) CurrentUser(ctx context.Context, claims *Claims) (*user.User, error) {
	u, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("auth: failed to fetch current user: %w", err)
	}

	sessionUser := *u
	sessionUser.Role = claims.Role
	return &sessionUser, nil
}
