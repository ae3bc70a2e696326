package errors

// ErrorUnauthorized is the error for requests to admin routes without a valid
// admin token.
type ErrorUnauthorized struct{}

func (eu *ErrorUnauthorized) Error() string {
	return "not authorized"
}

// ErrorUnknown is returned to clients in place of server errors, which are
// logged instead.
type ErrorUnknown struct{}

func (eu *ErrorUnknown) Error() string {
	return "unknown server error"
}

// ErrorMalformedRequest wraps a request body that could not be decoded.
type ErrorMalformedRequest struct {
	Reason string
}

func (em *ErrorMalformedRequest) Error() string {
	if em.Reason == "" {
		return "malformed request body"
	}
	return "malformed request body: " + em.Reason
}
