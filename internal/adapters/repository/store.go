// Package repository provides read access to stakeholder profiles.
package repository

import (
	"context"

	"github.com/okian/scoutmatch/internal/domain/model"
)

// Store provides read access to stakeholder profiles. Returned profiles are
// snapshots and must not be mutated by callers.
type Store interface {
	// Profile returns one profile by id.
	// Returns ErrNotFound if the id is unknown.
	Profile(ctx context.Context, id string) (model.Profile, error)

	// Candidates returns every profile passing the type filter except
	// excludeID, in store order.
	Candidates(ctx context.Context, filter model.StakeholderType, excludeID string) ([]model.Profile, error)

	// ByType returns at most limit profiles of the given type.
	// Returns ErrInvalidLimit when limit is not positive.
	ByType(ctx context.Context, t model.StakeholderType, limit int) ([]model.Profile, error)

	// Count returns the number of profiles visible to the store.
	Count(ctx context.Context) int
}

// Writer persists profiles.
type Writer interface {
	Upsert(ctx context.Context, profiles ...model.Profile) error
}

func validate(p model.Profile) error {
	if p.ID == "" {
		return ErrInvalidProfile
	}
	if !p.UserType.Valid() {
		return ErrInvalidProfile
	}
	return nil
}
