package admin

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/store"
)

// PolicyStore is the policy access the editor needs.
type PolicyStore interface {
	Get(ctx context.Context) (*models.PolicySet, error)
	Save(ctx context.Context, p *models.PolicySet) error
	Subscribe(ctx context.Context, fn func(*models.PolicySet)) (*store.Subscription, error)
}

// PolicyEditor loads and saves the five policy texts.
type PolicyEditor struct {
	policies PolicyStore
}

// NewPolicyEditor creates a PolicyEditor.
func NewPolicyEditor(policies PolicyStore) *PolicyEditor {
	return &PolicyEditor{policies: policies}
}

// Load returns the stored policies, empty when none were saved yet.
func (e *PolicyEditor) Load(ctx context.Context) (*models.PolicySet, error) {
	return e.policies.Get(ctx)
}

// Save overwrites the singleton policy record.
func (e *PolicyEditor) Save(ctx context.Context, p *models.PolicySet) error {
	if err := e.policies.Save(ctx, p); err != nil {
		log.Error().Err(err).Msg("Failed to save policies")
		return fmt.Errorf("save policies: %w", err)
	}
	log.Info().Msg("Policies saved")
	return nil
}

// Watch pushes the policy set on every change.
func (e *PolicyEditor) Watch(ctx context.Context, fn func(*models.PolicySet)) (*store.Subscription, error) {
	return e.policies.Subscribe(ctx, fn)
}

var policyTitles = map[models.PolicyKind]string{
	models.PolicyAbout:    "About Us",
	models.PolicyRefund:   "Refund Policy",
	models.PolicyTerms:    "Terms & Conditions",
	models.PolicyShipping: "Shipping Policy",
	models.PolicyPrivacy:  "Privacy Policy",
}

// PolicyPage is the storefront rendering of one policy.
type PolicyPage struct {
	Kind    models.PolicyKind `json:"kind"`
	Title   string            `json:"title"`
	Content string            `json:"content"`
}

// RenderPolicyPage draws the storefront page for kind.
func RenderPolicyPage(p *models.PolicySet, kind models.PolicyKind) PolicyPage {
	title, ok := policyTitles[kind]
	if !ok {
		title = "Policy"
	}
	content, _ := p.Text(kind)
	if content == "" {
		content = "Content not available."
	}
	return PolicyPage{Kind: kind, Title: title, Content: content}
}
