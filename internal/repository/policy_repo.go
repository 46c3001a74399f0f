package repository

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/store"
)

// PolicyRepository reads and writes the singleton policy record.
type PolicyRepository struct {
	store store.Store
}

// NewPolicyRepository creates a new PolicyRepository.
func NewPolicyRepository(s store.Store) *PolicyRepository {
	return &PolicyRepository{store: s}
}

// Get returns the policy set. A missing record yields an empty set.
func (r *PolicyRepository) Get(ctx context.Context) (*models.PolicySet, error) {
	snap, err := r.store.Read(ctx, PoliciesPath)
	if err != nil {
		return nil, err
	}
	var p models.PolicySet
	if err := snap.Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save overwrites the policy set.
func (r *PolicyRepository) Save(ctx context.Context, p *models.PolicySet) error {
	return r.store.Set(ctx, PoliciesPath, p)
}

// Subscribe delivers the policy set on every change.
func (r *PolicyRepository) Subscribe(ctx context.Context, fn func(*models.PolicySet)) (*store.Subscription, error) {
	return r.store.Subscribe(ctx, PoliciesPath, func(snap store.Snapshot) {
		var p models.PolicySet
		if err := snap.Decode(&p); err != nil {
			log.Error().Err(err).Msg("Failed to decode policies snapshot")
			return
		}
		fn(&p)
	})
}
