package admin_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/admin"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/store"
)

type brokenProducts struct {
	*repository.ProductRepository
}

func (brokenProducts) Create(context.Context, *models.Product) (string, error) {
	return "", errors.New("permission denied")
}

func newManager() (*admin.CatalogManager, *repository.ProductRepository) {
	repo := repository.NewProductRepository(store.NewMemory())
	return admin.NewCatalogManager(repo), repo
}

func TestParseSizesAndImages(t *testing.T) {
	assert.Equal(t, []string{"S", "M", "L"}, admin.ParseSizes(" S,M , L "))
	assert.Equal(t, []string{}, admin.ParseSizes("  "))
	assert.Equal(t, []string{"a.jpg", "b.jpg"}, admin.ParseImages("a.jpg\n\n  \n b.jpg \n"))
}

func TestFormRoundTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newManager()

	m.OpenNew()
	id, err := m.Save(ctx, admin.ProductForm{
		Title:    "Red Shirt",
		Price:    "499.5",
		Category: "Tops",
		Sizes:    "S, M, L",
		Images:   "https://cdn/1.jpg\nhttps://cdn/2.jpg\nhttps://cdn/3.jpg",
	})
	require.NoError(t, err)

	ed, err := m.OpenEdit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Edit Product", ed.Title)
	assert.Equal(t, id, ed.EditingID)
	assert.Equal(t, "S, M, L", ed.Form.Sizes)
	assert.Equal(t, "https://cdn/1.jpg\nhttps://cdn/2.jpg\nhttps://cdn/3.jpg", ed.Form.Images)
	assert.Equal(t, "499.5", ed.Form.Price)
}

func TestSaveRequiresTitlePriceCategory(t *testing.T) {
	ctx := context.Background()
	m, repo := newManager()

	cases := []admin.ProductForm{
		{Price: "10", Category: "Tops"},
		{Title: "X", Category: "Tops"},
		{Title: "X", Price: "0", Category: "Tops"},
		{Title: "X", Price: "abc", Category: "Tops"},
		{Title: "X", Price: "10"},
	}
	for _, f := range cases {
		m.OpenNew()
		_, err := m.Save(ctx, f)
		assert.True(t, admin.IsValidation(err), "%+v", f)
		assert.True(t, m.Editor().Open, "form stays open after validation error")
	}
	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSaveCreatesThenOverwrites(t *testing.T) {
	ctx := context.Background()
	m, repo := newManager()

	m.OpenNew()
	id, err := m.Save(ctx, admin.ProductForm{Title: "Cap", Price: "99", Category: "Hats", Desc: "shade"})
	require.NoError(t, err)
	assert.False(t, m.Editor().Open)

	_, err = m.OpenEdit(ctx, id)
	require.NoError(t, err)
	got, err := m.Save(ctx, admin.ProductForm{Title: "Cap v2", Price: "109", Category: "Hats"})
	require.NoError(t, err)
	assert.Equal(t, id, got)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Cap v2", all[id].Title)
	assert.Equal(t, "", all[id].Desc, "overwrite replaces the whole record")
}

func TestSaveFailureKeepsFormOpen(t *testing.T) {
	repo := repository.NewProductRepository(store.NewMemory())
	m := admin.NewCatalogManager(brokenProducts{repo})

	m.OpenNew()
	_, err := m.Save(context.Background(), admin.ProductForm{Title: "Cap", Price: "99", Category: "Hats"})
	require.Error(t, err)
	assert.False(t, admin.IsValidation(err))
	ed := m.Editor()
	assert.True(t, ed.Open)
	assert.Equal(t, "Cap", ed.Form.Title)
}

func TestOpenEditMissingIsNoop(t *testing.T) {
	m, _ := newManager()
	before := m.OpenNew()
	ed, err := m.OpenEdit(context.Background(), "gone")
	assert.ErrorIs(t, err, admin.ErrProductNotFound)
	assert.Equal(t, before, ed)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m, repo := newManager()

	id, err := repo.Create(ctx, &models.Product{Title: "Cap", Price: 99, Category: "Hats"})
	require.NoError(t, err)

	tables := make(chan admin.ProductsTable, 16)
	sub, err := m.Watch(ctx, func(tb admin.ProductsTable) { tables <- tb })
	require.NoError(t, err)
	defer sub.Cancel()
	first := <-tables
	require.Len(t, first.Rows, 1)

	var asked string
	err = m.Delete(ctx, id, admin.ConfirmFunc(func(_ context.Context, prompt string) bool {
		asked = prompt
		return false
	}))
	assert.ErrorIs(t, err, admin.ErrDeleteDeclined)
	assert.Equal(t, admin.DeletePrompt, asked)
	_, err = repo.Get(ctx, id)
	require.NoError(t, err)

	require.NoError(t, m.Delete(ctx, id, admin.Confirmed(true)))
	_, err = repo.Get(ctx, id)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.Eventually(t, func() bool {
		select {
		case tb := <-tables:
			return len(tb.Rows) == 0 && tb.Placeholder == "No products found"
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestRenderProductsTable(t *testing.T) {
	tb := admin.RenderProductsTable(map[string]models.Product{
		"a": {Title: "No category", Price: 5},
	})
	require.Len(t, tb.Rows, 1)
	assert.Equal(t, "N/A", tb.Rows[0].Category)
	assert.Equal(t, "", tb.Rows[0].Thumb)
}
