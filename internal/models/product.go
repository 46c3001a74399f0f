package models

// Product is a catalog record stored at products/{id}.
// Field names follow the stored document format.
type Product struct {
	ID        string   `json:"id,omitempty"`
	Title     string   `json:"title"`
	Price     float64  `json:"price"`
	Category  string   `json:"category"`
	Desc      string   `json:"desc"`
	FullDesc  string   `json:"fullDesc"`
	Sizes     []string `json:"sizes"`
	Images    []string `json:"images"`
	Timestamp int64    `json:"timestamp"`
}

// HasSize reports whether size is one of the product's size labels.
func (p *Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}

// FirstImage returns the cover image URL or an empty string when the product has none.
func (p *Product) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}
