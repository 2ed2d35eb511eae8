// Package apierror is the closed set of error kinds the HTTP API reports.
// Every error body has the shape {"error": "<kind>", "message": "<text>"}.
package apierror

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/geotrack/internal/common"
	"github.com/gin-gonic/gin"
)

// Kind is a machine-readable error tag.
type Kind string

const (
	KindBadRequest      Kind = "request/malformed"
	KindUnauthenticated Kind = "auth/unauthenticated"

	KindUserNotFound    Kind = "auth/user-not-found"
	KindWrongPassword   Kind = "auth/wrong-password"
	KindTooManyAttempts Kind = "auth/too-many-attempts"
	KindInvalidEmail    Kind = "auth/invalid-email"
	KindWeakPassword    Kind = "auth/weak-password"
	KindEmailInUse      Kind = "auth/email-already-in-use"
	KindAuthServer      Kind = "auth/server-error"

	KindLocationTooManyRequests Kind = "location/too-many-requests"
	KindLocationMalformed       Kind = "location/malformed-payload"
	KindLocationServer          Kind = "location/server-error"

	KindUploadContentType Kind = "upload/invalid-content-type"
	KindUploadNoFile      Kind = "upload/no-file"
	KindUploadFailed      Kind = "upload/failed"
)

// Status maps a kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindBadRequest, KindInvalidEmail, KindWeakPassword, KindLocationMalformed,
		KindUploadContentType, KindUploadNoFile:
		return http.StatusBadRequest
	case KindUnauthenticated, KindUserNotFound, KindWrongPassword:
		return http.StatusUnauthorized
	case KindEmailInUse:
		return http.StatusConflict
	case KindTooManyAttempts, KindLocationTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is the JSON error body.
type Error struct {
	Kind    Kind   `json:"error"`
	Message string `json:"message"`
}

// New returns an Error of kind with message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Error implements error interface.
func (e *Error) Error() string { return e.Message }

// Status returns the HTTP status code.
func (e *Error) Status() int { return e.Kind.Status() }

// Abort writes e and stops the gin handler chain.
func Abort(c *gin.Context, e *Error) {
	c.AbortWithStatusJSON(e.Status(), e)
}

var (
	errUnauthenticated = New(KindUnauthenticated, "Authentication required")
	errBadRequest      = New(KindBadRequest, "Malformed request body")
)

// Unauthenticated is returned when a protected route has no valid session.
func Unauthenticated() *Error { return errUnauthenticated }

// BadRequest is returned when a request body cannot be decoded.
func BadRequest() *Error { return errBadRequest }

// LoginError maps errors from the login flow.
func LoginError(err error) *Error {
	switch {
	case errors.Is(err, common.ErrUserNotFound):
		return New(KindUserNotFound, "No user found with this email")
	case errors.Is(err, common.ErrWrongPassword):
		return New(KindWrongPassword, "Incorrect password")
	case errors.Is(err, common.ErrRateLimitExceeded):
		return New(KindTooManyAttempts, "Too many login attempts, try again later")
	default:
		return New(KindAuthServer, "An error occurred during login")
	}
}

// SignUpError maps errors from the sign-up flow.
func SignUpError(err error) *Error {
	switch {
	case errors.Is(err, common.ErrInvalidEmail):
		return New(KindInvalidEmail, "Invalid email format")
	case errors.Is(err, common.ErrPasswordTooShort):
		return New(KindWeakPassword, "Password must be at least 8 characters long")
	case errors.Is(err, common.ErrEmailExists):
		return New(KindEmailInUse, "Email already registered")
	default:
		return New(KindAuthServer, "An error occurred during sign up")
	}
}

// LocationError maps errors from the location update flow.
func LocationError(err error) *Error {
	switch {
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrUserNotFound):
		return errUnauthenticated
	case errors.Is(err, common.ErrTooManyRequests):
		return New(KindLocationTooManyRequests, "Please wait before updating your location again")
	case errors.Is(err, common.ErrMalformedPayload):
		return New(KindLocationMalformed, "Latitude and longitude must be numbers")
	default:
		return New(KindLocationServer, "Failed to update location")
	}
}

// UploadError maps errors from the upload flow.
func UploadError(err error) *Error {
	switch {
	case errors.Is(err, common.ErrContentType):
		return New(KindUploadContentType, "Only JPEG images are allowed")
	case errors.Is(err, common.ErrNoFile):
		return New(KindUploadNoFile, "No file uploaded")
	case errors.Is(err, common.ErrNotMultipart):
		return New(KindUploadNoFile, "Upload must be sent as multipart/form-data with a file field")
	default:
		return New(KindUploadFailed, "Failed to upload file")
	}
}
