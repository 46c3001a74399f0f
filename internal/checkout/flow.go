package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/repository"
)

var mobilePattern = regexp.MustCompile(`^\d{10}$`)

// ProductReader loads the product being ordered.
type ProductReader interface {
	Get(ctx context.Context, id string) (*models.Product, error)
}

// OrderWriter persists confirmed orders. Ids are allocated ahead of the
// write so a repeated confirmation overwrites the same record.
type OrderWriter interface {
	NewID(ctx context.Context) (string, error)
	Put(ctx context.Context, id string, o *models.Order) error
}

// ShippingAddress holds the customer contact and address fields.
type ShippingAddress struct {
	FullName string `json:"fullname"`
	Mobile   string `json:"mobile"`
	Pincode  string `json:"pincode"`
	City     string `json:"city"`
	State    string `json:"state"`
	House    string `json:"house"`
}

func (a ShippingAddress) trimmed() ShippingAddress {
	return ShippingAddress{
		FullName: strings.TrimSpace(a.FullName),
		Mobile:   strings.TrimSpace(a.Mobile),
		Pincode:  strings.TrimSpace(a.Pincode),
		City:     strings.TrimSpace(a.City),
		State:    strings.TrimSpace(a.State),
		House:    strings.TrimSpace(a.House),
	}
}

func (a ShippingAddress) complete() bool {
	return a.FullName != "" && a.Mobile != "" && a.Pincode != "" &&
		a.City != "" && a.State != "" && a.House != ""
}

// Draft is the order being assembled.
type Draft struct {
	ProductID string               `json:"productId"`
	Size      string               `json:"size"`
	Qty       int                  `json:"qty"`
	Address   ShippingAddress      `json:"address"`
	Payment   models.PaymentMethod `json:"payment"`
	Timestamp int64                `json:"timestamp"`
	OrderID   string               `json:"reservedOrderId,omitempty"`
}

// Totals is the price breakdown shown on the summary step.
type Totals struct {
	UnitPrice float64 `json:"unitPrice"`
	Subtotal  float64 `json:"subtotal"`
	Delivery  float64 `json:"delivery"`
	Total     float64 `json:"total"`
}

// ComputeTotals returns unit*qty plus the fixed delivery fee.
func ComputeTotals(unitPrice float64, qty int) Totals {
	sub := unitPrice * float64(qty)
	return Totals{
		UnitPrice: unitPrice,
		Subtotal:  sub,
		Delivery:  models.DeliveryFee,
		Total:     sub + models.DeliveryFee,
	}
}

// Snapshot is the persisted state of a flow.
type Snapshot struct {
	State       State           `json:"state"`
	Draft       Draft           `json:"draft"`
	SelectedQty int             `json:"selectedQty"`
	Product     *models.Product `json:"product,omitempty"`
	Totals      *Totals         `json:"totals,omitempty"`
	OrderID     string          `json:"orderId,omitempty"`
}

// Option customises a Flow.
type Option func(*Flow)

// WithClock overrides the submission clock.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// Flow is one shopper's checkout.
type Flow struct {
	products ProductReader
	orders   OrderWriter
	now      func() time.Time

	mu          sync.Mutex
	state       State
	draft       Draft
	selectedQty int
	product     *models.Product
	totals      *Totals
	orderID     string
}

// NewFlow creates a flow in the Browsing state.
func NewFlow(products ProductReader, orders OrderWriter, opts ...Option) *Flow {
	f := &Flow{
		products:    products,
		orders:      orders,
		now:         time.Now,
		selectedQty: 1,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current step.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// SelectProduct starts ordering a product from any state. Quantity resets
// to 1. A missing product leaves the flow untouched.
func (f *Flow) SelectProduct(ctx context.Context, productID string) error {
	p, err := f.products.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.product = p
	f.draft = Draft{ProductID: productID, Qty: 1, Address: f.draft.Address}
	f.selectedQty = 1
	f.totals = nil
	f.orderID = ""
	f.state = SizeQty
	return nil
}

// Increment raises the selected quantity by one. There is no upper bound.
func (f *Flow) Increment() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != SizeQty {
		return f.selectedQty, f.transitionErr("increment")
	}
	f.selectedQty++
	return f.selectedQty, nil
}

// Decrement lowers the selected quantity by one, never below 1.
func (f *Flow) Decrement() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != SizeQty {
		return f.selectedQty, f.transitionErr("decrement")
	}
	if f.selectedQty > 1 {
		f.selectedQty--
	}
	return f.selectedQty, nil
}

// ToAddress commits size and quantity and moves to the address step.
func (f *Flow) ToAddress(size string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != SizeQty {
		return f.transitionErr("continue to address")
	}
	size = strings.TrimSpace(size)
	if size == "" {
		return invalid("Please select a size")
	}
	if !f.product.HasSize(size) {
		return invalid(fmt.Sprintf("Size %q is not available for this product", size))
	}
	f.draft.Size = size
	f.draft.Qty = f.selectedQty
	f.state = Address
	return nil
}

// ToSummary validates and commits the address, computes the total and
// moves to the summary step. The order id is reserved here and kept until
// the draft is replaced.
func (f *Flow) ToSummary(ctx context.Context, addr ShippingAddress) (Totals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Address {
		return Totals{}, f.transitionErr("continue to payment")
	}
	addr = addr.trimmed()
	if !addr.complete() {
		return Totals{}, invalid("Please fill all required fields")
	}
	if !mobilePattern.MatchString(addr.Mobile) {
		return Totals{}, invalid("Enter a valid 10-digit mobile number")
	}
	if f.draft.OrderID == "" {
		id, err := f.orders.NewID(ctx)
		if err != nil {
			return Totals{}, fmt.Errorf("reserve order id: %w", err)
		}
		f.draft.OrderID = id
	}
	f.draft.Address = addr
	t := ComputeTotals(f.product.Price, f.draft.Qty)
	f.totals = &t
	f.state = Summary
	return t, nil
}

// Confirm stamps the submission time and persists the draft as a Pending
// order under the reserved id. On failure the flow stays on Summary with the
// draft intact; confirming again rewrites the same order.
func (f *Flow) Confirm(ctx context.Context, payment models.PaymentMethod) (*models.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Summary {
		return nil, f.transitionErr("confirm")
	}
	if payment == "" {
		return nil, invalid("Please select a payment method")
	}
	if !payment.Valid() {
		return nil, invalid(fmt.Sprintf("Unknown payment method %q", payment))
	}

	f.draft.Payment = payment
	f.draft.Timestamp = f.now().UnixMilli()
	order := &models.Order{
		ProductID: f.draft.ProductID,
		Size:      f.draft.Size,
		Qty:       f.draft.Qty,
		Payment:   payment,
		FullName:  f.draft.Address.FullName,
		Mobile:    f.draft.Address.Mobile,
		Pincode:   f.draft.Address.Pincode,
		City:      f.draft.Address.City,
		State:     f.draft.Address.State,
		House:     f.draft.Address.House,
		Status:    models.OrderPending,
		Timestamp: f.draft.Timestamp,
	}

	id := f.draft.OrderID
	if id == "" {
		var err error
		if id, err = f.orders.NewID(ctx); err != nil {
			return nil, fmt.Errorf("reserve order id: %w", err)
		}
		f.draft.OrderID = id
	}
	if err := f.orders.Put(ctx, id, order); err != nil {
		log.Error().Err(err).Str("product_id", order.ProductID).Msg("Failed to place order")
		return nil, fmt.Errorf("place order: %w", err)
	}

	log.Info().Str("order_id", id).Str("product_id", order.ProductID).Int("qty", order.Qty).Msg("Order placed")
	order.ID = id
	f.orderID = id
	f.state = Confirmed
	return order, nil
}

// Back returns to the previous form step without discarding entered fields.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case Address:
		f.selectedQty = f.draft.Qty
		f.state = SizeQty
	case Summary:
		f.state = Address
	default:
		return f.transitionErr("go back")
	}
	return nil
}

// Reset returns to browsing and forgets the product and draft.
func (f *Flow) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Browsing
	f.draft = Draft{}
	f.selectedQty = 1
	f.product = nil
	f.totals = nil
	f.orderID = ""
}

// Snapshot captures the flow for persistence between requests.
func (f *Flow) Snapshot() *Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &Snapshot{
		State:       f.state,
		Draft:       f.draft,
		SelectedQty: f.selectedQty,
		OrderID:     f.orderID,
	}
	if f.product != nil {
		p := *f.product
		s.Product = &p
	}
	if f.totals != nil {
		t := *f.totals
		s.Totals = &t
	}
	return s
}

// Restore replaces the flow state with s.
func (f *Flow) Restore(s *Snapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s.State
	f.draft = s.Draft
	f.selectedQty = s.SelectedQty
	if f.selectedQty < 1 {
		f.selectedQty = 1
	}
	f.product = s.Product
	f.totals = s.Totals
	f.orderID = s.OrderID
	if f.product == nil && f.state != Browsing {
		f.state = Browsing
	}
}

func (f *Flow) transitionErr(action string) error {
	return fmt.Errorf("%w: cannot %s while %s", ErrInvalidTransition, action, f.state)
}
