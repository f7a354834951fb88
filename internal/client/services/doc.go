// Package services holds the client-side application services of mdash.
//
// TokenStore persists the session token, the user record and the current
// brand in the local metadata table. SessionController owns the session
// lifecycle (Uninitialized, Resolving, Authenticated, Anonymous) and the
// profile fetched for it. BrandSelector manages the account's brands and the
// social connections of the current one. AuthService validates the login and
// registration forms and talks to the backend on their behalf.
//
// Results of network calls are tagged with the session epoch (and, for social
// details, the brand selection) that was current when the call was made, and
// are dropped if that has changed by the time the answer arrives.
package services
