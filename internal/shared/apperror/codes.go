package apperror

// Stable machine-readable codes carried in the error envelope. Clients
// branch on these, never on messages or HTTP statuses.
const (
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInvalidState    = "INVALID_STATE"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"

	CodeInternalError = "INTERNAL_ERROR"
)
