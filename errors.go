package portalauth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	textCodeMissingRefreshToken = "MISSING_REFRESH_TOKEN"
	textCodeSessionExpired      = "SESSION_EXPIRED"
)

// ErrMissingRefreshToken is returned when a refresh is requested but the
// session carries no refresh token.
var ErrMissingRefreshToken = goerrors.New("no refresh token available", goerrors.CategoryAuth).
	WithTextCode(textCodeMissingRefreshToken).
	WithCode(goerrors.CodeUnauthorized)

// ErrSessionExpired identifies a session whose access token already elapsed,
// e.g. a persisted record discarded at startup or a refresh token the service
// no longer accepts.
var ErrSessionExpired = goerrors.New("session token expired", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionExpired).
	WithCode(goerrors.CodeUnauthorized)

// Fallback error texts, used when the identity service fails without a
// usable message.
const (
	fallbackLogin          = "Login failed"
	fallbackSignup         = "Signup failed"
	fallbackRefresh        = "Token refresh failed"
	fallbackLogout         = "Logout failed"
	fallbackCurrentUser    = "Failed to get user"
	fallbackForgotPassword = "Failed to process request"
	fallbackResetPassword  = "Password reset failed"
)

// IsUnauthorized reports whether err carries an unauthorized code.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Code == goerrors.CodeUnauthorized
	}
	return false
}

// isValidationError reports whether err is a local payload validation
// failure. Those are caller mistakes, not session state: they are re-raised
// but never stored on the session.
func isValidationError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryValidation
	}
	return false
}

// IsSessionExpired reports whether err marks a session whose token elapsed.
func IsSessionExpired(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.TextCode == textCodeSessionExpired
	}
	return false
}

// serviceMessage extracts the user-facing message from a service error,
// falling back to the per-operation default.
func serviceMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.Message != "" {
		return richErr.Message
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
