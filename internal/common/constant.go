package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// requests to the account store.
const AuthorizationHeaderName = "Authorization"

// SignatureHeaderName carries the hex-encoded ed25519 signature of a
// challenge request body.
const SignatureHeaderName = "X-Account-Signature"
