package utils

import "github.com/google/uuid"

// IDGenerator generates identifiers for new records and instances.
type IDGenerator interface {
	Generate() string
}

// UUIDGenerator produces time-ordered UUIDv7 strings, falling back to v4.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
