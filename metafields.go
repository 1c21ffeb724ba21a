package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// Metafield is a key-value annotation attached to another resource.
type Metafield struct {
	ID          int64  `json:"id"`
	Namespace   string `json:"namespace"`
	Key         string `json:"key"`
	Value       string `json:"value"`
	ValueType   string `json:"value_type"`
	Description string `json:"description,omitempty"`
	OwnerType   string `json:"owner_type"`
	OwnerID     int64  `json:"owner_id"`
	CreatedOn   string `json:"created_on"`
	UpdatedOn   string `json:"updated_on"`
}

// MetafieldOwner identifies the resource a metafield belongs to, e.g.
// {Type: "product", ID: 42}.
type MetafieldOwner struct {
	Type string
	ID   int64
}

func (o MetafieldOwner) basePath() string {
	return fmt.Sprintf("/admin/%ss/%d/metafields", o.Type, o.ID)
}

// CreateMetafieldData is the payload for creating or updating a metafield.
type CreateMetafieldData struct {
	Namespace   string `json:"namespace,omitempty"`
	Key         string `json:"key,omitempty"`
	Value       string `json:"value,omitempty"`
	ValueType   string `json:"value_type,omitempty"`
	Description string `json:"description,omitempty"`
}

// MetafieldListParams filter metafield list and count requests.
type MetafieldListParams struct {
	ListParams
	Namespace string
	Key       string
	ValueType string
}

func (p *MetafieldListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "namespace", p.Namespace)
	addString(v, "key", p.Key)
	addString(v, "value_type", p.ValueType)
	return v
}

// MetafieldBulkResult reports the outcome of a bulk delete.
type MetafieldBulkResult struct {
	Count  int      `json:"count"`
	Status string   `json:"status"`
	Errors []string `json:"errors,omitempty"`
}

// MetafieldsService wraps the owner-scoped metafield endpoints.
type MetafieldsService struct {
	client *Client
}

// List returns the metafields of an owner resource.
func (s *MetafieldsService) List(ctx context.Context, owner MetafieldOwner, params *MetafieldListParams) ([]Metafield, error) {
	var env struct {
		Metafields []Metafield `json:"metafields"`
	}
	if err := s.client.Get(ctx, owner.basePath()+".json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Metafields, nil
}

// Get returns a single metafield of an owner resource.
func (s *MetafieldsService) Get(ctx context.Context, owner MetafieldOwner, id int64) (*Metafield, error) {
	var env struct {
		Metafield Metafield `json:"metafield"`
	}
	path := fmt.Sprintf("%s/%d.json", owner.basePath(), id)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Metafield, nil
}

// Create attaches a metafield to an owner resource.
func (s *MetafieldsService) Create(ctx context.Context, owner MetafieldOwner, data CreateMetafieldData) (*Metafield, error) {
	var env struct {
		Metafield Metafield `json:"metafield"`
	}
	body := map[string]CreateMetafieldData{"metafield": data}
	if err := s.client.Post(ctx, owner.basePath()+".json", body, &env); err != nil {
		return nil, err
	}
	return &env.Metafield, nil
}

// Update updates a metafield of an owner resource.
func (s *MetafieldsService) Update(ctx context.Context, owner MetafieldOwner, id int64, data CreateMetafieldData) (*Metafield, error) {
	var env struct {
		Metafield Metafield `json:"metafield"`
	}
	path := fmt.Sprintf("%s/%d.json", owner.basePath(), id)
	body := map[string]CreateMetafieldData{"metafield": data}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Metafield, nil
}

// Delete deletes a metafield of an owner resource.
func (s *MetafieldsService) Delete(ctx context.Context, owner MetafieldOwner, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("%s/%d.json", owner.basePath(), id))
}

// Count returns the number of metafields on an owner resource.
func (s *MetafieldsService) Count(ctx context.Context, owner MetafieldOwner, params *MetafieldListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, owner.basePath()+"/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// BulkDelete deletes several metafields of an owner resource in one call.
func (s *MetafieldsService) BulkDelete(ctx context.Context, owner MetafieldOwner, ids []int64) (*MetafieldBulkResult, error) {
	var env struct {
		BulkOperation MetafieldBulkResult `json:"bulk_operation"`
	}
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids[]", fmt.Sprintf("%d", id))
	}
	path := owner.basePath() + "/bulk.json"
	if err := s.client.do(ctx, "DELETE", path, q, nil, &env); err != nil {
		return nil, err
	}
	return &env.BulkOperation, nil
}
