package models

import "github.com/google/uuid"

// Entity is anything the simulation tracks by identity.
type Entity interface {
	ID() uuid.UUID
	Name() string
}
