package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// Fulfillment is a shipment of some or all of an order's line items.
type Fulfillment struct {
	ID              int64                 `json:"id"`
	OrderID         int64                 `json:"order_id"`
	Status          string                `json:"status"`
	TrackingCompany string                `json:"tracking_company,omitempty"`
	TrackingNumber  string                `json:"tracking_number,omitempty"`
	NotifyCustomer  bool                  `json:"notify_customer"`
	LineItems       []FulfillmentLineItem `json:"line_items"`
	ShippingAddress *Address              `json:"shipping_address,omitempty"`
	CreatedOn       string                `json:"created_on"`
	UpdatedOn       string                `json:"updated_on"`
}

// FulfillmentLineItem is one shipped line of an order.
type FulfillmentLineItem struct {
	ID              int64   `json:"id"`
	OrderLineItemID int64   `json:"order_line_item_id"`
	VariantID       int64   `json:"variant_id"`
	ProductID       int64   `json:"product_id"`
	Title           string  `json:"title"`
	VariantTitle    string  `json:"variant_title,omitempty"`
	SKU             string  `json:"sku,omitempty"`
	Quantity        int     `json:"quantity"`
	Price           float64 `json:"price"`
	TotalPrice      float64 `json:"total_price"`
}

// ShippingCarrier is a supported shipping provider.
type ShippingCarrier struct {
	Code                   string `json:"code"`
	Name                   string `json:"name"`
	RequiresTrackingNumber bool   `json:"requires_tracking_number"`
	SupportsLabelPrinting  bool   `json:"supports_label_printing"`
}

// FulfillmentEvent is a tracking milestone on a fulfillment.
type FulfillmentEvent struct {
	ID            int64  `json:"id"`
	FulfillmentID int64  `json:"fulfillment_id"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
	LocationID    int64  `json:"location_id,omitempty"`
	CreatedOn     string `json:"created_on"`
}

// CreateFulfillmentData is the payload for creating a fulfillment.
type CreateFulfillmentData struct {
	LineItems       []CreateOrderLineItemRef `json:"line_items,omitempty"`
	TrackingNumber  string                   `json:"tracking_number,omitempty"`
	TrackingCompany string                   `json:"tracking_company,omitempty"`
	NotifyCustomer  *bool                    `json:"notify_customer,omitempty"`
}

// CreateOrderLineItemRef references an order line item and quantity.
type CreateOrderLineItemRef struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// UpdateTrackingData changes tracking details on a fulfillment.
type UpdateTrackingData struct {
	TrackingNumber  string `json:"tracking_number,omitempty"`
	TrackingCompany string `json:"tracking_company,omitempty"`
	NotifyCustomer  *bool  `json:"notify_customer,omitempty"`
}

// CreateFulfillmentEventData records a tracking milestone.
type CreateFulfillmentEventData struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// FulfillmentListParams filter fulfillment list and count requests.
type FulfillmentListParams struct {
	ListParams
	Status string
}

func (p *FulfillmentListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "status", p.Status)
	return v
}

// FulfillmentsService wraps the order-scoped fulfillment endpoints.
type FulfillmentsService struct {
	client *Client
}

// List returns the fulfillments of an order.
func (s *FulfillmentsService) List(ctx context.Context, orderID int64, params *FulfillmentListParams) ([]Fulfillment, error) {
	var env struct {
		Fulfillments []Fulfillment `json:"fulfillments"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments.json", orderID)
	if err := s.client.Get(ctx, path, params.values(), &env); err != nil {
		return nil, err
	}
	return env.Fulfillments, nil
}

// Get returns a single fulfillment of an order.
func (s *FulfillmentsService) Get(ctx context.Context, orderID, id int64) (*Fulfillment, error) {
	var env struct {
		Fulfillment Fulfillment `json:"fulfillment"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments/%d.json", orderID, id)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Fulfillment, nil
}

// Create creates a fulfillment for an order.
func (s *FulfillmentsService) Create(ctx context.Context, orderID int64, data CreateFulfillmentData) (*Fulfillment, error) {
	var env struct {
		Fulfillment Fulfillment `json:"fulfillment"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments.json", orderID)
	body := map[string]CreateFulfillmentData{"fulfillment": data}
	if err := s.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Fulfillment, nil
}

// UpdateTracking updates the tracking details of a fulfillment.
func (s *FulfillmentsService) UpdateTracking(ctx context.Context, orderID, id int64, data UpdateTrackingData) (*Fulfillment, error) {
	var env struct {
		Fulfillment Fulfillment `json:"fulfillment"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments/%d.json", orderID, id)
	body := map[string]UpdateTrackingData{"fulfillment": data}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Fulfillment, nil
}

// Cancel cancels a fulfillment.
func (s *FulfillmentsService) Cancel(ctx context.Context, orderID, id int64) (*Fulfillment, error) {
	var env struct {
		Fulfillment Fulfillment `json:"fulfillment"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments/%d/cancel.json", orderID, id)
	if err := s.client.Post(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Fulfillment, nil
}

// GetCarriers returns the supported shipping carriers.
func (s *FulfillmentsService) GetCarriers(ctx context.Context) ([]ShippingCarrier, error) {
	var env struct {
		Carriers []ShippingCarrier `json:"carriers"`
	}
	if err := s.client.Get(ctx, "/admin/carriers.json", nil, &env); err != nil {
		return nil, err
	}
	return env.Carriers, nil
}

// CreateEvent records a tracking event on a fulfillment.
func (s *FulfillmentsService) CreateEvent(ctx context.Context, orderID, fulfillmentID int64, data CreateFulfillmentEventData) (*FulfillmentEvent, error) {
	var env struct {
		Event FulfillmentEvent `json:"event"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments/%d/events.json", orderID, fulfillmentID)
	body := map[string]CreateFulfillmentEventData{"event": data}
	if err := s.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Event, nil
}

// ListEvents returns the tracking events of a fulfillment.
func (s *FulfillmentsService) ListEvents(ctx context.Context, orderID, fulfillmentID int64) ([]FulfillmentEvent, error) {
	var env struct {
		Events []FulfillmentEvent `json:"events"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments/%d/events.json", orderID, fulfillmentID)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Events, nil
}

// DeleteEvent deletes a tracking event.
func (s *FulfillmentsService) DeleteEvent(ctx context.Context, orderID, fulfillmentID, eventID int64) error {
	path := fmt.Sprintf("/admin/orders/%d/fulfillments/%d/events/%d.json", orderID, fulfillmentID, eventID)
	return s.client.Delete(ctx, path)
}

// Count returns the number of fulfillments on an order.
func (s *FulfillmentsService) Count(ctx context.Context, orderID int64, params *FulfillmentListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	path := fmt.Sprintf("/admin/orders/%d/fulfillments/count.json", orderID)
	if err := s.client.Get(ctx, path, params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}
