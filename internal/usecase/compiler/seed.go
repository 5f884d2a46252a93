package compiler

import (
	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// SessionSeeder keeps random ordering stable for a session and fresh otherwise.
type SessionSeeder struct {
	nonce func() string
}

// NewSessionSeeder creates a seeder backed by random UUID nonces.
func NewSessionSeeder() *SessionSeeder {
	return &SessionSeeder{nonce: uuid.NewString}
}

// Seed hashes the session id, or a fresh nonce when the session is empty.
func (s *SessionSeeder) Seed(session string) uint32 {
	if session == "" {
		session = s.nonce()
	}
	return uint32(xxhash.Sum64String(session))
}
