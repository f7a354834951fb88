// Package models defines the client-side data models of mdash: the session
// user, the business profile, brands and per-brand social connections.
package models
