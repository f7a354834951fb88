package common

// AuthHeaderValue formats token for the AuthHeaderName header.
func AuthHeaderValue(token string) string {
	return AuthScheme + " " + token
}
