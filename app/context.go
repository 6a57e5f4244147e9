package main

import (
	"context"
	"net/http"

	"github.com/sushihentaime/bloghub/internal/userservice"
)

type contextKey string

const (
	userContextKey   = contextKey("user")
	claimsContextKey = contextKey("claims")
)

func (app *application) createUserContext(r *http.Request, user *userservice.User, claims *userservice.Claims) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	if claims != nil {
		ctx = context.WithValue(ctx, claimsContextKey, claims)
	}
	return r.WithContext(ctx)
}

// getUserContext returns the anonymous user when the request went through no authentication.
func (app *application) getUserContext(r *http.Request) *userservice.User {
	user, ok := r.Context().Value(userContextKey).(*userservice.User)
	if !ok {
		return &userservice.AnonymousUser
	}
	return user
}

func (app *application) getClaimsContext(r *http.Request) *userservice.Claims {
	claims, ok := r.Context().Value(claimsContextKey).(*userservice.Claims)
	if !ok {
		return nil
	}
	return claims
}
