package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/taskboard/internal/domain/task"
	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/geocoder89/taskboard/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// storeTimeout bounds every store call made while serving a request.
const storeTimeout = 3 * time.Second

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// page is the data every template receives. Handlers fill only what their
// template reads.
type page struct {
	Title string
	User  user.User
	Flash string

	Columns []column

	Name   string
	Email  string
	Fields []FieldError

	Status    int
	Message   string
	RequestID string
}

type column struct {
	Category task.Category
	Tasks    []task.Task
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString(middlewares.CtxRequestID); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func storeCtx(ctx *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx.Request.Context(), storeTimeout)
}

func render(ctx *gin.Context, status int, name string, p page) {
	p.User = middlewares.CurrentUser(ctx)

	if flash := popFlash(ctx); p.Flash == "" {
		p.Flash = flash
	}

	ctx.HTML(status, name, p)
}

func RespondErrorPage(ctx *gin.Context, status int, message string) {
	render(ctx, status, "error.html", page{
		Title:     http.StatusText(status),
		Status:    status,
		Message:   message,
		RequestID: requestIDFrom(ctx),
	})
}

// respondInternalPage attaches err so the request logger records it.
func respondInternalPage(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	RespondErrorPage(ctx, http.StatusInternalServerError, "Something went wrong on our side. Please try again.")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// NotFound serves unknown routes: JSON under /api, an error page elsewhere.
func NotFound(ctx *gin.Context) {
	if strings.HasPrefix(ctx.Request.URL.Path, "/api/") {
		RespondNotFound(ctx, "Route not found")
		return
	}

	RespondErrorPage(ctx, http.StatusNotFound, "That page does not exist.")
}

// Unauthorized is used by RequireLogin for anonymous requests.
func Unauthorized(ctx *gin.Context) {
	RespondErrorPage(ctx, http.StatusUnauthorized, "Please log in to do that.")
}

// TooManyRequests renders the rate limiter rejection.
func TooManyRequests(ctx *gin.Context, _ int) {
	RespondErrorPage(ctx, http.StatusTooManyRequests, "Too many attempts. Please wait a minute and try again.")
}
