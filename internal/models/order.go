package models

// OrderStatus is the fulfilment state of an order. Only admins change it.
type OrderStatus string

const (
	OrderPending   OrderStatus = "Pending"
	OrderShipped   OrderStatus = "Shipped"
	OrderDelivered OrderStatus = "Delivered"
	OrderCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in selector order.
var OrderStatuses = []OrderStatus{OrderPending, OrderShipped, OrderDelivered, OrderCancelled}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// PaymentMethod is the payment option chosen at checkout.
type PaymentMethod string

const (
	PaymentPrepaid PaymentMethod = "prepaid"
	PaymentCOD     PaymentMethod = "cod"
)

// Valid reports whether m is a known payment method.
func (m PaymentMethod) Valid() bool {
	return m == PaymentPrepaid || m == PaymentCOD
}

// DeliveryFee is the flat delivery charge added to every order total.
const DeliveryFee = 50

// Order is a submitted checkout stored at orders/{id}.
type Order struct {
	ID        string        `json:"id,omitempty"`
	ProductID string        `json:"productId"`
	Size      string        `json:"size"`
	Qty       int           `json:"qty"`
	Payment   PaymentMethod `json:"payment"`
	FullName  string        `json:"fullname"`
	Mobile    string        `json:"mobile"`
	Pincode   string        `json:"pincode"`
	City      string        `json:"city"`
	State     string        `json:"state"`
	House     string        `json:"house"`
	Status    OrderStatus   `json:"status"`
	Timestamp int64         `json:"timestamp"`
}

// OrderTotal returns unitPrice*qty plus the delivery fee.
func OrderTotal(unitPrice float64, qty int) float64 {
	return unitPrice*float64(qty) + DeliveryFee
}
