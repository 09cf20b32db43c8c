package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/geocoder89/taskboard/internal/actorctx"
	"github.com/geocoder89/taskboard/internal/auth"
	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// Keep these interfaces small so tests can fake them easily.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

type UserLoader interface {
	LoadByID(ctx context.Context, id int64) (user.User, error)
}

// LoadIdentity resolves the session cookie into a user and stores it in the
// request context. Requests without a usable session continue as Anonymous.
// The cookie is cleared only when the session itself is bad; store or Redis
// failures leave it in place for the next request. The secure setting is also
// published under CtxSecureCookies for the other cookies the app sets.
func LoadIdentity(sessions SessionVerifier, users UserLoader, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxSecureCookies, secure)

		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		claims, err := sessions.Verify(ctx, token)
		if err != nil {
			dropSession(c, err, secure)
			c.Next()
			return
		}

		u, err := users.LoadByID(ctx, claims.UserID)
		if err != nil {
			dropSession(c, err, secure)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(actorctx.WithUser(ctx, u))
		c.Next()
	}
}

func dropSession(c *gin.Context, err error, secure bool) {
	switch {
	case errors.Is(err, auth.ErrInvalidSession),
		errors.Is(err, auth.ErrSessionRevoked),
		errors.Is(err, user.ErrNotFound):
		ClearSessionCookie(c, secure)
	default:
		slog.Default().WarnContext(c.Request.Context(), "session lookup failed, serving as anonymous",
			"err", err,
			"request_id", c.GetString(CtxRequestID),
		)
	}
}

// RequireLogin short-circuits anonymous requests through deny.
func RequireLogin(deny gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if u, ok := actorctx.UserFrom(c.Request.Context()); ok && u.IsAuthenticated() {
			c.Next()
			return
		}

		deny(c)
		c.Abort()
	}
}

// CurrentUser returns the identity LoadIdentity stored, or user.Anonymous.
func CurrentUser(c *gin.Context) user.User {
	u, ok := actorctx.UserFrom(c.Request.Context())
	if !ok {
		return user.Anonymous
	}
	return u
}

func SetSessionCookie(c *gin.Context, token string, expiresAt time.Time, secure bool) {
	maxAge := int(time.Until(expiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = -1
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", secure, true)
}

func ClearSessionCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}
