package cli

import "github.com/marketmemphis/mdash/internal/client/services"

// access is the outcome of the session check done before a protected command.
type access int

const (
	accessAllow    access = iota // run the command
	accessWait                   // session still resolving: show a neutral notice
	accessRedirect               // no session: send the user to login
)

// guard maps a session snapshot to an access decision. A resolving session
// never redirects, so a slow start does not flash a login prompt.
func guard(s services.Snapshot) access {
	switch s.State {
	case services.StateAuthenticated:
		return accessAllow
	case services.StateAnonymous:
		return accessRedirect
	default:
		return accessWait
	}
}
