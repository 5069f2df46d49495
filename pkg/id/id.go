// Package id generates time-sortable identifiers for orders, positions, and
// journal rows. ULIDs sort lexicographically by generation time, which keeps
// sqlite indexes append-friendly.
package id

import "github.com/oklog/ulid/v2"

// New returns a fresh ULID string.
func New() string {
	return ulid.Make().String()
}
