package admin

import (
	"strings"
	"time"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
)

const (
	noProductsPlaceholder = "No products found"
	noOrdersPlaceholder   = "No orders found"
)

// ProductRow is one row of the admin products table.
type ProductRow struct {
	ID       string  `json:"id"`
	Thumb    string  `json:"thumb"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// ProductsTable is the rendered admin products table.
type ProductsTable struct {
	Rows        []ProductRow `json:"rows"`
	Placeholder string       `json:"placeholder,omitempty"`
}

// RenderProductsTable draws the products table from a full snapshot.
func RenderProductsTable(products map[string]models.Product) ProductsTable {
	if len(products) == 0 {
		return ProductsTable{Rows: []ProductRow{}, Placeholder: noProductsPlaceholder}
	}
	rows := make([]ProductRow, 0, len(products))
	for _, id := range repository.SortedIDs(products) {
		p := products[id]
		category := p.Category
		if category == "" {
			category = "N/A"
		}
		rows = append(rows, ProductRow{
			ID:       id,
			Thumb:    p.FirstImage(),
			Title:    p.Title,
			Price:    p.Price,
			Category: category,
		})
	}
	return ProductsTable{Rows: rows}
}

// StatusOption is one entry of the order status selector.
type StatusOption struct {
	Value    models.OrderStatus `json:"value"`
	Selected bool               `json:"selected"`
}

// OrderRow is one row of the admin orders table.
type OrderRow struct {
	ID               string         `json:"id"`
	ShortID          string         `json:"shortId"`
	Customer         string         `json:"customer"`
	ProductID        string         `json:"productId"`
	ProductTitle     string         `json:"productTitle,omitempty"`
	Size             string         `json:"size"`
	Qty              int            `json:"qty"`
	Payment          string         `json:"payment"`
	Total            *float64       `json:"total,omitempty"`
	TotalUnavailable bool           `json:"totalUnavailable,omitempty"`
	Status           []StatusOption `json:"status"`
	Date             string         `json:"date"`
}

// OrdersTable is the rendered admin orders table.
type OrdersTable struct {
	Rows        []OrderRow `json:"rows"`
	Placeholder string     `json:"placeholder,omitempty"`
}

// RenderOrdersTable draws the orders table. Totals use the referenced
// product's stored price; orders whose product is gone are flagged instead.
func RenderOrdersTable(orders map[string]models.Order, products map[string]models.Product, loc *time.Location) OrdersTable {
	if len(orders) == 0 {
		return OrdersTable{Rows: []OrderRow{}, Placeholder: noOrdersPlaceholder}
	}
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]OrderRow, 0, len(orders))
	for _, id := range repository.SortedIDs(orders) {
		o := orders[id]
		row := OrderRow{
			ID:        id,
			ShortID:   shortID(id),
			Customer:  o.FullName,
			ProductID: o.ProductID,
			Size:      o.Size,
			Qty:       o.Qty,
			Payment:   string(o.Payment),
			Status:    statusOptions(o.Status),
			Date:      time.UnixMilli(o.Timestamp).In(loc).Format("2006-01-02"),
		}
		if p, ok := products[o.ProductID]; ok {
			total := models.OrderTotal(p.Price, o.Qty)
			row.Total = &total
			row.ProductTitle = p.Title
		} else {
			row.TotalUnavailable = true
		}
		rows = append(rows, row)
	}
	return OrdersTable{Rows: rows}
}

func statusOptions(current models.OrderStatus) []StatusOption {
	opts := make([]StatusOption, len(models.OrderStatuses))
	for i, s := range models.OrderStatuses {
		opts[i] = StatusOption{Value: s, Selected: s == current}
	}
	return opts
}

// shortID takes the tail of the id. Push ids lead with a millisecond
// timestamp, so their prefix repeats for orders placed close together.
func shortID(id string) string {
	tail := strings.ReplaceAll(id, "-", "")
	if len(tail) <= 8 {
		return tail
	}
	return tail[len(tail)-8:]
}
