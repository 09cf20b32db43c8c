package handlers

import (
	"net/http"

	"github.com/geocoder89/taskboard/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// flash messages survive exactly one redirect
const flashMaxAge = 60

func setFlash(ctx *gin.Context, message string) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.FlashCookie, message, flashMaxAge, "/", "", ctx.GetBool(middlewares.CtxSecureCookies), true)
}

// popFlash returns the pending message, if any, and clears it.
func popFlash(ctx *gin.Context) string {
	message, err := ctx.Cookie(middlewares.FlashCookie)
	if err != nil || message == "" {
		return ""
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.FlashCookie, "", -1, "/", "", ctx.GetBool(middlewares.CtxSecureCookies), true)

	return message
}
