package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// Order is a placed order with its line items and addresses.
type Order struct {
	ID                int64           `json:"id"`
	OrderNumber       string          `json:"order_number"`
	TotalPrice        float64         `json:"total_price"`
	SubtotalPrice     float64         `json:"subtotal_price"`
	TotalTax          float64         `json:"total_tax"`
	Currency          string          `json:"currency"`
	FinancialStatus   string          `json:"financial_status"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	Status            string          `json:"status"`
	LineItems         []OrderLineItem `json:"line_items"`
	Customer          *OrderCustomer  `json:"customer,omitempty"`
	ShippingAddress   *Address        `json:"shipping_address,omitempty"`
	BillingAddress    *Address        `json:"billing_address,omitempty"`
	CreatedOn         string          `json:"created_on"`
	UpdatedOn         string          `json:"updated_on"`
}

// OrderLineItem is one purchased variant within an order.
type OrderLineItem struct {
	ID           int64   `json:"id"`
	VariantID    int64   `json:"variant_id"`
	ProductID    int64   `json:"product_id"`
	Title        string  `json:"title"`
	VariantTitle string  `json:"variant_title,omitempty"`
	SKU          string  `json:"sku,omitempty"`
	Quantity     int     `json:"quantity"`
	Price        float64 `json:"price"`
	TotalPrice   float64 `json:"total_price"`
}

// OrderCustomer is the customer summary embedded in an order.
type OrderCustomer struct {
	ID        int64  `json:"id,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// CreateOrderLineItem identifies a variant and quantity for order creation.
type CreateOrderLineItem struct {
	VariantID int64 `json:"variant_id"`
	Quantity  int   `json:"quantity"`
}

// CreateOrderData is the payload for creating or updating an order.
type CreateOrderData struct {
	LineItems       []CreateOrderLineItem `json:"line_items,omitempty"`
	Customer        *OrderCustomer        `json:"customer,omitempty"`
	ShippingAddress *Address              `json:"shipping_address,omitempty"`
	BillingAddress  *Address              `json:"billing_address,omitempty"`
}

// OrderListParams filter order list and count requests.
type OrderListParams struct {
	ListParams
	Status            string
	FinancialStatus   string
	FulfillmentStatus string
	CustomerID        int64
}

func (p *OrderListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "status", p.Status)
	addString(v, "financial_status", p.FinancialStatus)
	addString(v, "fulfillment_status", p.FulfillmentStatus)
	addInt64(v, "customer_id", p.CustomerID)
	return v
}

// OrdersService wraps the order endpoints.
type OrdersService struct {
	client *Client
}

// List returns a page of orders.
func (s *OrdersService) List(ctx context.Context, params *OrderListParams) ([]Order, error) {
	var env struct {
		Orders []Order `json:"orders"`
	}
	if err := s.client.Get(ctx, "/admin/orders.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Orders, nil
}

// Get returns a single order by id.
func (s *OrdersService) Get(ctx context.Context, id int64) (*Order, error) {
	var env struct {
		Order Order `json:"order"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/orders/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Order, nil
}

// Create creates a new order.
func (s *OrdersService) Create(ctx context.Context, data CreateOrderData) (*Order, error) {
	var env struct {
		Order Order `json:"order"`
	}
	body := map[string]CreateOrderData{"order": data}
	if err := s.client.Post(ctx, "/admin/orders.json", body, &env); err != nil {
		return nil, err
	}
	return &env.Order, nil
}

// Update updates an existing order.
func (s *OrdersService) Update(ctx context.Context, id int64, data CreateOrderData) (*Order, error) {
	var env struct {
		Order Order `json:"order"`
	}
	body := map[string]CreateOrderData{"order": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/orders/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.Order, nil
}

// Delete deletes an order.
func (s *OrdersService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/orders/%d.json", id))
}

// Count returns the total number of orders matching the filters.
func (s *OrdersService) Count(ctx context.Context, params *OrderListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/orders/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// Cancel cancels an order.
func (s *OrdersService) Cancel(ctx context.Context, id int64) (*Order, error) {
	return s.orderAction(ctx, id, "cancel")
}

// MarkAsPaid marks an order as paid.
func (s *OrdersService) MarkAsPaid(ctx context.Context, id int64) (*Order, error) {
	return s.orderAction(ctx, id, "paid")
}

// MarkAsFulfilled marks an order as fulfilled.
func (s *OrdersService) MarkAsFulfilled(ctx context.Context, id int64) (*Order, error) {
	return s.orderAction(ctx, id, "fulfilled")
}

func (s *OrdersService) orderAction(ctx context.Context, id int64, action string) (*Order, error) {
	var env struct {
		Order Order `json:"order"`
	}
	path := fmt.Sprintf("/admin/orders/%d/%s.json", id, action)
	if err := s.client.Post(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Order, nil
}
