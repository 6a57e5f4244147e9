package userservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sushihentaime/bloghub/internal/common"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

func NewUserService(db *sql.DB, mb common.MessageProducer, c *common.Cache, tokens *TokenManager, logger *slog.Logger) *UserService {
	return &UserService{
		m:      newUserModel(db),
		tokens: tokens,
		mb:     mb,
		c:      c,
		logger: logger,
	}
}

// SignUp creates a new user account and publishes a user.created event.
func (s *UserService) SignUp(ctx context.Context, name, email, password string) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	v := common.NewValidator()
	validateName(v, name)
	validateEmail(v, email)
	validatePassword(v, password)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	u := User{
		Name:     name,
		Email:    email,
		Password: Password{Plain: password},
	}

	if err := u.Password.set(password); err != nil {
		return nil, err
	}

	if err := s.m.insert(ctx, &u); err != nil {
		return nil, err
	}

	// the account exists at this point, a lost welcome mail is not worth failing the request
	msg, err := json.Marshal(common.UserCreatedEvent{Name: u.Name, Email: u.Email})
	if err == nil {
		err = s.mb.Publish(ctx, msg, common.UserCreatedKey, common.BlogExchange)
	}
	if err != nil {
		s.logger.Warn("could not publish user created event", slog.String("user_id", u.ID.String()), slog.String("error", err.Error()))
	}

	return &u, nil
}

// SignIn checks the credentials and issues a new access token.
func (s *UserService) SignIn(ctx context.Context, email, password string) (*User, *Token, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	v := common.NewValidator()
	validateCredentials(v, email, password)
	if !v.Valid() {
		return nil, nil, v.ValidationError()
	}

	user, err := s.m.getByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, nil, ErrInvalidCredentials
		default:
			return nil, nil, err
		}
	}

	ok, err := user.Password.matches(password)
	if err != nil {
		return nil, nil, err
	}

	if !ok {
		return nil, nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, token, nil
}

// Authenticate resolves a bearer token to its user. Revoked tokens and tokens of removed users are rejected.
func (s *UserService) Authenticate(ctx context.Context, raw string) (*User, *Claims, error) {
	claims, err := s.tokens.Verify(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	if _, revoked := s.c.Get(common.CacheKeyRevokedToken(claims.ID)); revoked {
		return nil, nil, fmt.Errorf("%w: token revoked", common.ErrUnauthorized)
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	user, err := s.m.getByID(ctx, id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRecordNotFound):
			return nil, nil, fmt.Errorf("%w: user no longer exists", common.ErrUnauthorized)
		default:
			return nil, nil, err
		}
	}

	return user, claims, nil
}

// Logout revokes the token described by claims until it would have expired anyway.
func (s *UserService) Logout(ctx context.Context, claims *Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	s.c.Set(common.CacheKeyRevokedToken(claims.ID), struct{}{}, ttl)

	return nil
}

func (u *User) IsAnonymous() bool {
	return u == &AnonymousUser
}

func (u *User) Owner() Owner {
	return Owner{ID: u.ID, Name: u.Name, Email: u.Email}
}
