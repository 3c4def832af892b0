package common

const (
	// AuthorizationHeaderName carries the bearer access token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the only accepted authorization scheme.
	BearerScheme = "Bearer"

	// RequestIDHeaderName is echoed back on every response.
	RequestIDHeaderName = "X-Request-ID"

	// VerificationCodeLength is the number of digits in an email verification code.
	VerificationCodeLength = 6
)
