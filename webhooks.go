package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// Webhook is a subscription delivering topic events to an address.
type Webhook struct {
	ID                  int64    `json:"id"`
	Topic               string   `json:"topic"`
	Address             string   `json:"address"`
	Format              string   `json:"format"`
	APIVersion          string   `json:"api_version,omitempty"`
	Fields              []string `json:"fields,omitempty"`
	MetafieldNamespaces []string `json:"metafield_namespaces,omitempty"`
	CreatedOn           string   `json:"created_on"`
	UpdatedOn           string   `json:"updated_on"`
}

// WebhookDelivery is one delivery attempt of a webhook event.
type WebhookDelivery struct {
	ID           int64  `json:"id"`
	WebhookID    int64  `json:"webhook_id"`
	ResponseCode int    `json:"response_code,omitempty"`
	ResponseBody string `json:"response_body,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	Status       string `json:"status,omitempty"`
	DeliveredOn  string `json:"delivered_on"`
}

// CreateWebhookData is the payload for creating or updating a webhook.
type CreateWebhookData struct {
	Topic               string   `json:"topic,omitempty"`
	Address             string   `json:"address,omitempty"`
	Format              string   `json:"format,omitempty"`
	APIVersion          string   `json:"api_version,omitempty"`
	Fields              []string `json:"fields,omitempty"`
	MetafieldNamespaces []string `json:"metafield_namespaces,omitempty"`
}

// WebhookListParams filter webhook list and count requests.
type WebhookListParams struct {
	ListParams
	Topic   string
	Address string
}

func (p *WebhookListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "topic", p.Topic)
	addString(v, "address", p.Address)
	return v
}

// DeliveryListParams filter webhook delivery list requests.
type DeliveryListParams struct {
	ListParams
	Status         string
	DeliveredOnMin string
	DeliveredOnMax string
}

func (p *DeliveryListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "status", p.Status)
	addString(v, "delivered_on_min", p.DeliveredOnMin)
	addString(v, "delivered_on_max", p.DeliveredOnMax)
	return v
}

// WebhooksService wraps the webhook endpoints.
type WebhooksService struct {
	client *Client
}

// List returns a page of webhooks.
func (s *WebhooksService) List(ctx context.Context, params *WebhookListParams) ([]Webhook, error) {
	var env struct {
		Webhooks []Webhook `json:"webhooks"`
	}
	if err := s.client.Get(ctx, "/admin/webhooks.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Webhooks, nil
}

// Get returns a single webhook by id.
func (s *WebhooksService) Get(ctx context.Context, id int64) (*Webhook, error) {
	var env struct {
		Webhook Webhook `json:"webhook"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/webhooks/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Webhook, nil
}

// Create creates a new webhook subscription.
func (s *WebhooksService) Create(ctx context.Context, data CreateWebhookData) (*Webhook, error) {
	var env struct {
		Webhook Webhook `json:"webhook"`
	}
	body := map[string]CreateWebhookData{"webhook": data}
	if err := s.client.Post(ctx, "/admin/webhooks.json", body, &env); err != nil {
		return nil, err
	}
	return &env.Webhook, nil
}

// Update updates an existing webhook subscription.
func (s *WebhooksService) Update(ctx context.Context, id int64, data CreateWebhookData) (*Webhook, error) {
	var env struct {
		Webhook Webhook `json:"webhook"`
	}
	body := map[string]CreateWebhookData{"webhook": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/webhooks/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.Webhook, nil
}

// Delete deletes a webhook subscription.
func (s *WebhooksService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/webhooks/%d.json", id))
}

// Count returns the total number of webhooks matching the filters.
func (s *WebhooksService) Count(ctx context.Context, params *WebhookListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/webhooks/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// ListDeliveries returns the delivery attempts of a webhook.
func (s *WebhooksService) ListDeliveries(ctx context.Context, webhookID int64, params *DeliveryListParams) ([]WebhookDelivery, error) {
	var env struct {
		Deliveries []WebhookDelivery `json:"deliveries"`
	}
	path := fmt.Sprintf("/admin/webhooks/%d/deliveries.json", webhookID)
	if err := s.client.Get(ctx, path, params.values(), &env); err != nil {
		return nil, err
	}
	return env.Deliveries, nil
}

// GetDelivery returns one delivery attempt of a webhook.
func (s *WebhooksService) GetDelivery(ctx context.Context, webhookID, deliveryID int64) (*WebhookDelivery, error) {
	var env struct {
		Delivery WebhookDelivery `json:"delivery"`
	}
	path := fmt.Sprintf("/admin/webhooks/%d/deliveries/%d.json", webhookID, deliveryID)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Delivery, nil
}

// ResendDelivery retries a failed delivery.
func (s *WebhooksService) ResendDelivery(ctx context.Context, webhookID, deliveryID int64) (*WebhookDelivery, error) {
	var env struct {
		Delivery WebhookDelivery `json:"delivery"`
	}
	path := fmt.Sprintf("/admin/webhooks/%d/deliveries/%d/resend.json", webhookID, deliveryID)
	if err := s.client.Post(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Delivery, nil
}

// Test triggers a test delivery of a webhook.
func (s *WebhooksService) Test(ctx context.Context, id int64) error {
	return s.client.Post(ctx, fmt.Sprintf("/admin/webhooks/%d/test.json", id), nil, nil)
}

// VerifySignature reports whether a webhook body matches its HMAC
// signature header.
func (s *WebhooksService) VerifySignature(body []byte, signature string) bool {
	return s.client.VerifyWebhook(body, signature)
}
