package catalog

import (
	"strings"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
)

// EmptyGridPlaceholder is shown instead of an empty product grid.
const EmptyGridPlaceholder = "No products available"

// Card is one product tile in the grid.
type Card struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Desc     string  `json:"desc"`
	Category string  `json:"category"`
	Image    string  `json:"image"`
}

// GridView describes the product grid region.
type GridView struct {
	Cards       []Card `json:"cards"`
	Empty       bool   `json:"empty"`
	Placeholder string `json:"placeholder,omitempty"`
}

// RenderGrid draws the whole grid from a snapshot.
func RenderGrid(products map[string]models.Product) GridView {
	if len(products) == 0 {
		return GridView{Cards: []Card{}, Empty: true, Placeholder: EmptyGridPlaceholder}
	}
	cards := make([]Card, 0, len(products))
	for _, id := range repository.SortedIDs(products) {
		p := products[id]
		cards = append(cards, Card{
			ID:       id,
			Title:    p.Title,
			Price:    p.Price,
			Desc:     p.Desc,
			Category: p.Category,
			Image:    p.FirstImage(),
		})
	}
	return GridView{Cards: cards}
}

// CategoryPill is one entry of the category bar.
type CategoryPill struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	Active bool   `json:"active"`
}

// RenderCategories lists "All" followed by each distinct category in
// creation order, marking active.
func RenderCategories(products map[string]models.Product, active string) []CategoryPill {
	if active == "" {
		active = AllCategories
	}
	pills := []CategoryPill{{Label: "All", Value: AllCategories, Active: active == AllCategories}}
	seen := map[string]bool{}
	for _, id := range repository.SortedIDs(products) {
		c := products[id].Category
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		pills = append(pills, CategoryPill{Label: c, Value: c, Active: c == active})
	}
	return pills
}

// DetailView describes the product detail page.
type DetailView struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Price      float64  `json:"price"`
	Desc       string   `json:"desc"`
	FullDesc   string   `json:"fullDesc"`
	Category   string   `json:"category"`
	Sizes      []string `json:"sizes"`
	SizesText  string   `json:"sizesText"`
	MainImage  string   `json:"mainImage"`
	Thumbnails []string `json:"thumbnails"`
}

// RenderDetail draws the detail page. Products without images get an empty
// main image and no thumbnails.
func RenderDetail(p *models.Product) DetailView {
	thumbs := make([]string, len(p.Images))
	copy(thumbs, p.Images)
	sizes := make([]string, len(p.Sizes))
	copy(sizes, p.Sizes)
	return DetailView{
		ID:         p.ID,
		Title:      p.Title,
		Price:      p.Price,
		Desc:       p.Desc,
		FullDesc:   p.FullDesc,
		Category:   p.Category,
		Sizes:      sizes,
		SizesText:  strings.Join(p.Sizes, ", "),
		MainImage:  p.FirstImage(),
		Thumbnails: thumbs,
	}
}
