package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_shop/internal/catalog"
	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
	"github.com/GTDGit/gtd_shop/internal/store"
)

func sampleProducts() map[string]models.Product {
	return map[string]models.Product{
		"p1": {ID: "p1", Title: "Red Shirt", Desc: "cotton", Category: "Tops", Price: 499},
		"p2": {ID: "p2", Title: "Blue Jeans", Desc: "goes well with a RED SHIRT", Category: "Bottoms", Price: 999},
		"p3": {ID: "p3", Title: "Scarf", Desc: "wool", Category: "red shirts and more", Price: 199},
		"p4": {ID: "p4", Title: "Green Cap", Desc: "shade", Category: "Tops", Price: 99},
	}
}

func TestFilterSearchMatchesAnyFieldIgnoringCase(t *testing.T) {
	got := catalog.Filter(sampleProducts(), catalog.Query{Search: "  red shirt "})
	assert.ElementsMatch(t, []string{"p1", "p2", "p3"}, repository.SortedIDs(got))
}

func TestFilterCategoryIsExact(t *testing.T) {
	got := catalog.Filter(sampleProducts(), catalog.Query{Category: "Tops"})
	assert.Equal(t, []string{"p1", "p4"}, repository.SortedIDs(got))

	all := catalog.Filter(sampleProducts(), catalog.Query{Category: catalog.AllCategories})
	assert.Len(t, all, 4)
}

func TestFilterCombinesCategoryAndSearch(t *testing.T) {
	got := catalog.Filter(sampleProducts(), catalog.Query{Category: "Tops", Search: "cap"})
	assert.Equal(t, []string{"p4"}, repository.SortedIDs(got))
}

func TestRenderGridEmptyShowsPlaceholder(t *testing.T) {
	g := catalog.RenderGrid(map[string]models.Product{})
	assert.True(t, g.Empty)
	assert.Equal(t, "No products available", g.Placeholder)
	assert.Empty(t, g.Cards)
}

func TestRenderGridWithoutImages(t *testing.T) {
	g := catalog.RenderGrid(map[string]models.Product{"a": {Title: "Plain"}})
	require.Len(t, g.Cards, 1)
	assert.Equal(t, "", g.Cards[0].Image)
	assert.Equal(t, "a", g.Cards[0].ID)
}

func TestRenderDetailWithoutImages(t *testing.T) {
	d := catalog.RenderDetail(&models.Product{ID: "a", Title: "Plain", Sizes: []string{"S", "M"}})
	assert.Equal(t, "", d.MainImage)
	assert.Empty(t, d.Thumbnails)
	assert.Equal(t, "S, M", d.SizesText)
}

func TestRenderCategoriesDistinctWithAllFirst(t *testing.T) {
	pills := catalog.RenderCategories(sampleProducts(), "Tops")
	labels := make([]string, len(pills))
	for i, p := range pills {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"All", "Tops", "Bottoms", "red shirts and more"}, labels)
	assert.False(t, pills[0].Active)
	assert.True(t, pills[1].Active)
}

func TestDetailMissingProduct(t *testing.T) {
	c := catalog.New(repository.NewProductRepository(store.NewMemory()))
	_, err := c.Detail(context.Background(), "nope")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestViewReplacesSubscriptionOnQueryChange(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mem := store.NewMemory()
	repo := repository.NewProductRepository(mem)
	for _, p := range []models.Product{
		{Title: "Red Shirt", Category: "Tops", Price: 1},
		{Title: "Jeans", Category: "Bottoms", Price: 2},
	} {
		p := p
		_, err := repo.Create(ctx, &p)
		require.NoError(t, err)
	}

	frames := make(chan catalog.Frame, 32)
	v := catalog.New(repo).NewView(ctx, func(f catalog.Frame) { frames <- f })
	defer v.Close()

	require.NoError(t, v.SetQuery(catalog.Query{Search: "shirt"}))
	require.NoError(t, v.SetQuery(catalog.Query{Category: "Bottoms"}))

	f := lastFrame(t, frames)
	assert.Equal(t, "Bottoms", f.Query.Category)
	require.Len(t, f.Grid.Cards, 1)
	assert.Equal(t, "Jeans", f.Grid.Cards[0].Title)
	assert.Eventually(t, func() bool { return mem.Hub().WatcherCount() == 1 }, time.Second, 5*time.Millisecond)

	_, err := repo.Create(ctx, &models.Product{Title: "Shorts", Category: "Bottoms", Price: 3})
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		select {
		case f := <-frames:
			return f.Query.Category == "Bottoms" && len(f.Grid.Cards) == 2
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

// lastFrame waits for deliveries to settle and returns the most recent one.
func lastFrame(t *testing.T, ch <-chan catalog.Frame) catalog.Frame {
	t.Helper()
	var last catalog.Frame
	got := false
	timeout := time.After(time.Second)
	for {
		select {
		case f := <-ch:
			last, got = f, true
		case <-time.After(50 * time.Millisecond):
			if got {
				return last
			}
		case <-timeout:
			t.Fatal("no frame delivered")
		}
	}
}
