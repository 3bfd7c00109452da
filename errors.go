package classtop

import "github.com/goliatone/go-errors"

const (
	TextCodeInvalidCreds      = "auth_invalid_credentials"
	TextCodeSessionExpired    = "auth_session_expired"
	TextCodeRateLimited       = "rate_limited"
	TextCodeRequestFailed     = "request_failed"
	TextCodeEnvelopeDecode    = "envelope_decode_error"
	TextCodeRegistrationError = "auth_registration_failed"
)

// ErrInvalidCredentials is returned when the server rejects a login attempt
// and supplies no detail of its own. Rejections that carry a detail message
// wrap this sentinel.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrRegistrationFailed is the registration counterpart of
// ErrInvalidCredentials.
var ErrRegistrationFailed = errors.New("Registration failed", errors.CategoryAuth).
	WithTextCode(TextCodeRegistrationError).
	WithCode(errors.CodeUnauthorized)

// ErrSessionExpired is returned when an authorized request comes back 401.
// The dispatcher has already cleared the session by the time callers see it.
var ErrSessionExpired = errors.New("session is no longer valid", errors.CategoryAuth).
	WithTextCode(TextCodeSessionExpired).
	WithCode(errors.CodeUnauthorized)

// ErrRateLimited is returned on 429. No retry or backoff happens here.
var ErrRateLimited = errors.New("too many requests - please try again later", errors.CategoryRateLimit).
	WithTextCode(TextCodeRateLimited)

// ErrRequestFailed is the generic fallback for non-2xx responses whose body
// carries no detail message. Failures that carry a detail wrap this sentinel.
var ErrRequestFailed = errors.New("Request failed", errors.CategoryOperation).
	WithTextCode(TextCodeRequestFailed)

// ErrUnableToDecodeEnvelope is returned when a 2xx body is not a valid
// response envelope.
var ErrUnableToDecodeEnvelope = errors.New("unable to decode response envelope", errors.CategoryBadInput).
	WithTextCode(TextCodeEnvelopeDecode)

// IsAuthenticationError reports whether err is an authentication failure
// (401 dispatch, or a rejected login/registration).
func IsAuthenticationError(err error) bool {
	richErr := asRichError(err)
	return richErr != nil && richErr.Category == errors.CategoryAuth
}

// IsRateLimitError reports whether err is a 429 rejection.
func IsRateLimitError(err error) bool {
	richErr := asRichError(err)
	return richErr != nil && richErr.Category == errors.CategoryRateLimit
}

// IsRequestError reports whether err is a non-auth, non-rate-limit remote
// failure.
func IsRequestError(err error) bool {
	richErr := asRichError(err)
	return richErr != nil && richErr.Category == errors.CategoryOperation
}

func asRichError(err error) *errors.Error {
	if err == nil {
		return nil
	}

	var richErr *errors.Error
	if !errors.As(err, &richErr) {
		return nil
	}

	return richErr
}
