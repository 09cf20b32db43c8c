package middlewares

// gin context keys and cookie names shared by middlewares and handlers.
const (
	CtxRequestID = "request_id"
	// CtxSecureCookies holds whether cookies set during this request carry the Secure flag.
	CtxSecureCookies = "secure_cookies"

	SessionCookie = "session"
	FlashCookie   = "flash"
)
