package checkout

// ProductPanel is the product shown on the size/quantity step.
type ProductPanel struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Price float64  `json:"price"`
	Sizes []string `json:"sizes"`
	Image string   `json:"image"`
}

// SummaryPanel is the order summary shown before payment.
type SummaryPanel struct {
	ProductTitle string  `json:"productTitle"`
	Size         string  `json:"size"`
	Qty          int     `json:"qty"`
	Subtotal     float64 `json:"subtotal"`
	Delivery     float64 `json:"delivery"`
	Total        float64 `json:"total"`
}

// FlowView is the rendered checkout region.
type FlowView struct {
	ID          string        `json:"id"`
	State       State         `json:"state"`
	Page        string        `json:"page"`
	Product     *ProductPanel `json:"product,omitempty"`
	SelectedQty int           `json:"selectedQty"`
	Draft       Draft         `json:"draft"`
	Summary     *SummaryPanel `json:"summary,omitempty"`
	OrderID     string        `json:"orderId,omitempty"`
}

// Render draws the checkout region for snapshot s.
func Render(id string, s *Snapshot) FlowView {
	v := FlowView{
		ID:          id,
		State:       s.State,
		Page:        s.State.Page(),
		SelectedQty: s.SelectedQty,
		Draft:       s.Draft,
		OrderID:     s.OrderID,
	}
	if s.Product != nil {
		sizes := make([]string, len(s.Product.Sizes))
		copy(sizes, s.Product.Sizes)
		v.Product = &ProductPanel{
			ID:    s.Draft.ProductID,
			Title: s.Product.Title,
			Price: s.Product.Price,
			Sizes: sizes,
			Image: s.Product.FirstImage(),
		}
	}
	if s.Totals != nil && s.Product != nil && (s.State == Summary || s.State == Confirmed) {
		v.Summary = &SummaryPanel{
			ProductTitle: s.Product.Title,
			Size:         s.Draft.Size,
			Qty:          s.Draft.Qty,
			Subtotal:     s.Totals.Subtotal,
			Delivery:     s.Totals.Delivery,
			Total:        s.Totals.Total,
		}
	}
	return v
}
