package common

// AuthorizationHeaderName carries the bearer access token on REST calls.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "
