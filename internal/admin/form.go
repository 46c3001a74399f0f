package admin

import (
	"strconv"
	"strings"

	"github.com/GTDGit/gtd_shop/internal/models"
)

// ProductForm is the product editor as the operator types it.
type ProductForm struct {
	Title    string `json:"title"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Desc     string `json:"desc"`
	FullDesc string `json:"fullDesc"`
	Sizes    string `json:"sizes"`
	Images   string `json:"images"`
}

// ParseSizes splits a comma separated size list, trimming each piece.
func ParseSizes(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// ParseImages splits a newline separated URL list, dropping blank lines.
func ParseImages(raw string) []string {
	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// FormFromProduct fills the editor from a stored product.
func FormFromProduct(p *models.Product) ProductForm {
	price := ""
	if p.Price != 0 {
		price = strconv.FormatFloat(p.Price, 'f', -1, 64)
	}
	return ProductForm{
		Title:    p.Title,
		Price:    price,
		Category: p.Category,
		Desc:     p.Desc,
		FullDesc: p.FullDesc,
		Sizes:    strings.Join(p.Sizes, ", "),
		Images:   strings.Join(p.Images, "\n"),
	}
}

// toProduct validates the form and builds the record to store.
func (f ProductForm) toProduct() (*models.Product, error) {
	title := strings.TrimSpace(f.Title)
	category := strings.TrimSpace(f.Category)
	price, err := strconv.ParseFloat(strings.TrimSpace(f.Price), 64)
	if title == "" || category == "" || err != nil || price == 0 {
		return nil, &ValidationError{Message: "Please fill in required fields: Title, Price, and Category"}
	}
	if price < 0 {
		return nil, &ValidationError{Message: "Price must be a positive number"}
	}
	return &models.Product{
		Title:    title,
		Price:    price,
		Category: category,
		Desc:     f.Desc,
		FullDesc: f.FullDesc,
		Sizes:    ParseSizes(f.Sizes),
		Images:   ParseImages(f.Images),
	}, nil
}
