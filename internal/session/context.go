package session

import (
	"context"

	"github.com/garnizeh/staffboard/pkg/models"
)

type ctxKey string

const ctxUser ctxKey = "user"

// WithUser returns ctx carrying the authenticated user.
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUser, u)
}

// UserFromContext returns the authenticated user, or nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	u, _ := ctx.Value(ctxUser).(*models.User)
	return u
}
