// Package models holds the server-side data records.
package models

import "time"

// Account is one registered identity and its current snapshot blob.
// The snapshot is opaque to the server: no field-level access, every
// write replaces the whole document.
type Account struct {
	PublicKey string
	Snapshot  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}
