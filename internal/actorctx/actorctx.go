package actorctx

import (
	"context"

	"github.com/geocoder89/taskboard/internal/domain/user"
)

type ctxKey string

const keyUser ctxKey = "user"

func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, keyUser, u)
}

// UserFrom returns the authenticated user, or user.Anonymous and false.
func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(keyUser).(user.User)

	if !ok || !u.IsAuthenticated() {
		return user.Anonymous, false
	}

	return u, true
}
