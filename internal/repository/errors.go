// Package repository is the in-memory ticketing backend.  Every repository
// serves canned records behind a simulated network latency; nothing is
// persisted across restarts.
//
// Sentinel errors below are shared by several repositories.  Handlers
// translate them into HTTP responses with errors.Is.
package repository

import "errors"

// ErrUnavailable is returned when the backend refuses a request, either
// because the caller gave up waiting or because a failure was injected.
// Handlers should translate this into an HTTP 502 response.
var ErrUnavailable = errors.New("backend unavailable")

// ErrInvalidPurchase is returned when a purchase breaks the total
// invariant or references unknown showtimes.
var ErrInvalidPurchase = errors.New("invalid purchase")

// ErrInvalidCredentials is returned by Login for unknown pairs.
var ErrInvalidCredentials = errors.New("invalid credentials")
