package admin_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/store"
)

func TestPolicySaveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	e := admin.NewPolicyEditor(repository.NewPolicyRepository(mem))

	empty, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.PolicySet{}, *empty)

	set := &models.PolicySet{About: "We sell shirts.", Refund: "30 days."}
	require.NoError(t, e.Save(ctx, set))
	require.NoError(t, e.Save(ctx, set))

	assert.Equal(t, []string{"policies"}, mem.Paths())
	got, err := e.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, *set, *got)
}

func TestRenderPolicyPage(t *testing.T) {
	set := &models.PolicySet{Terms: "Be nice."}

	page := admin.RenderPolicyPage(set, models.PolicyTerms)
	assert.Equal(t, "Terms & Conditions", page.Title)
	assert.Equal(t, "Be nice.", page.Content)

	page = admin.RenderPolicyPage(set, models.PolicyPrivacy)
	assert.Equal(t, "Privacy Policy", page.Title)
	assert.Equal(t, "Content not available.", page.Content)

	page = admin.RenderPolicyPage(set, "cookies")
	assert.Equal(t, "Policy", page.Title)
}
