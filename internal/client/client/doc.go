// Package client contains the transport layer of the mdash client.
//
// # Overview
//
// The package provides:
//  1. The Client interface: register, login, profile, brand listing,
//     creation and renaming, and per-brand social details.
//  2. HTTPClient, the REST/JSON implementation talking to the marketing
//     backend. It attaches "Authorization: Token <token>" to authenticated
//     calls and tags every request with an X-Request-ID.
//  3. Local database bootstrap (InitDatabase, RunMigrations) applying the
//     embedded goose migrations to the SQLite file that backs the token store.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
//   - ErrMissingCredential: an authenticated call was made without a token.
//   - ErrSessionExpired: the backend answered 401 to an authenticated call.
//   - ErrRequestFailed: any other non-2xx answer (see RequestError for the
//     status code and the backend message).
//   - ErrUnavailable: the backend could not be reached.
//
// Brand creation and renaming are sent as POST and PATCH. The legacy backend
// exposed both as GET; mutating calls over GET are cacheable and may be
// replayed by intermediaries.
package client
