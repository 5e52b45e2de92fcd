package utils

// ContextKey is the key type for values the middlewares place on the
// request context.
type ContextKey string
