package middlewares

// gin context keys shared between middlewares and handlers.
const (
	CtxRequestID = "ctx_request_id"
)
