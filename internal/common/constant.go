// Package common contains shared constants and helpers used across
// the mdash client packages.
package common

// AuthHeaderName is the HTTP header carrying the session token on
// authenticated backend requests.
const AuthHeaderName = "Authorization"

// AuthScheme prefixes the token inside AuthHeaderName ("Token <token>").
const AuthScheme = "Token"

// RequestIDHeaderName tags every outbound request with a random id so a
// single call can be traced in backend logs.
const RequestIDHeaderName = "X-Request-ID"
