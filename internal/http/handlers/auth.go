package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/taskboard/internal/domain/user"
	"github.com/geocoder89/taskboard/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

const (
	msgEmailTaken      = "You've already signed up with that email, log in instead!"
	msgUnknownEmail    = "That email does not exist, please try again."
	msgInvalidPassword = "Password incorrect, please try again!"
	msgMissingLogin    = "Please enter your email and password."
	msgCheckFields     = "Please check the highlighted fields."
)

type Accounts interface {
	Register(ctx context.Context, email, password, name string) (user.User, error)
	Authenticate(ctx context.Context, email, password string) (user.User, error)
}

type SessionIssuer interface {
	Issue(userID int64) (token string, expiresAt time.Time, err error)
	Revoke(ctx context.Context, token string) error
}

type AuthHandler struct {
	accounts      Accounts
	sessions      SessionIssuer
	secureCookies bool
}

func NewAuthHandler(accounts Accounts, sessions SessionIssuer, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		accounts:      accounts,
		sessions:      sessions,
		secureCookies: secureCookies,
	}
}

func (h *AuthHandler) RegisterPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "register.html", page{Title: "Register"})
}

// Register creates the account and logs it in. Failures re-render the form.
func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	fields, err := BindForm(ctx, &req)
	if err != nil {
		if middlewares.IsBodyTooLarge(err) {
			RespondErrorPage(ctx, http.StatusRequestEntityTooLarge, "That request is too large.")
			return
		}
		render(ctx, http.StatusBadRequest, "register.html", page{
			Title:  "Register",
			Name:   req.Name,
			Email:  req.Email,
			Fields: fields,
			Flash:  msgCheckFields,
		})
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	u, err := h.accounts.Register(cctx, req.Email, req.Password, req.Name)
	switch {
	case err == nil:
	case errors.Is(err, user.ErrEmailTaken):
		render(ctx, http.StatusOK, "register.html", page{
			Title: "Register",
			Name:  req.Name,
			Email: req.Email,
			Flash: msgEmailTaken,
		})
		return
	case errors.Is(err, user.ErrEmptyName):
		render(ctx, http.StatusBadRequest, "register.html", page{
			Title: "Register",
			Email: req.Email,
			Fields: []FieldError{{
				Field:   "register-name",
				Rule:    "required",
				Message: validationMessage("required", ""),
			}},
			Flash: msgCheckFields,
		})
		return
	default:
		respondInternalPage(ctx, err)
		return
	}

	h.startSession(ctx, u)
}

func (h *AuthHandler) LoginPage(ctx *gin.Context) {
	render(ctx, http.StatusOK, "login.html", page{Title: "Log in"})
}

// Login checks the credentials. Every failure flashes a notice and goes back to /login.
func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if _, err := BindForm(ctx, &req); err != nil {
		h.loginFailed(ctx, msgMissingLogin)
		return
	}

	cctx, cancel := storeCtx(ctx)
	defer cancel()

	u, err := h.accounts.Authenticate(cctx, req.Email, req.Password)
	switch {
	case err == nil:
		h.startSession(ctx, u)
	case errors.Is(err, user.ErrUnknownEmail):
		h.loginFailed(ctx, msgUnknownEmail)
	case errors.Is(err, user.ErrInvalidPassword):
		h.loginFailed(ctx, msgInvalidPassword)
	default:
		respondInternalPage(ctx, err)
	}
}

// Logout revokes the current session, if there is one, and clears the cookie.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	if token, err := ctx.Cookie(middlewares.SessionCookie); err == nil && token != "" {
		cctx, cancel := storeCtx(ctx)
		defer cancel()

		if err := h.sessions.Revoke(cctx, token); err != nil {
			// the cookie is still cleared; the token lives on until it expires
			_ = ctx.Error(err)
		}
	}

	middlewares.ClearSessionCookie(ctx, h.secureCookies)
	ctx.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) startSession(ctx *gin.Context, u user.User) {
	token, expiresAt, err := h.sessions.Issue(u.ID)
	if err != nil {
		respondInternalPage(ctx, err)
		return
	}

	middlewares.SetSessionCookie(ctx, token, expiresAt, h.secureCookies)
	ctx.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) loginFailed(ctx *gin.Context, message string) {
	setFlash(ctx, message)
	ctx.Redirect(http.StatusFound, "/login")
}
