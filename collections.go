package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// Collection is a grouping of products, either hand-picked (custom) or
// rule-driven (smart).
type Collection struct {
	ID             int64            `json:"id"`
	Handle         string           `json:"handle"`
	Title          string           `json:"title"`
	BodyHTML       string           `json:"body_html,omitempty"`
	Published      bool             `json:"published"`
	PublishedAt    string           `json:"published_at,omitempty"`
	TemplateSuffix string           `json:"template_suffix,omitempty"`
	SortOrder      string           `json:"sort_order,omitempty"`
	CollectionType string           `json:"collection_type"`
	Image          *CollectionImage `json:"image,omitempty"`
	ProductsCount  int              `json:"products_count"`
	CreatedOn      string           `json:"created_on"`
	UpdatedOn      string           `json:"updated_on"`
}

// CollectionImage is the cover image of a collection.
type CollectionImage struct {
	Src       string `json:"src"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
	Alt       string `json:"alt,omitempty"`
	CreatedOn string `json:"created_on,omitempty"`
}

// CollectionRule is one condition of a smart collection.
type CollectionRule struct {
	Column    string `json:"column"`
	Relation  string `json:"relation"`
	Condition string `json:"condition"`
}

// CreateCollectionData is the payload for a custom collection.
type CreateCollectionData struct {
	Title          string           `json:"title,omitempty"`
	BodyHTML       string           `json:"body_html,omitempty"`
	Published      *bool            `json:"published,omitempty"`
	TemplateSuffix string           `json:"template_suffix,omitempty"`
	SortOrder      string           `json:"sort_order,omitempty"`
	Image          *CollectionImage `json:"image,omitempty"`
}

// CreateSmartCollectionData is the payload for a smart collection.
type CreateSmartCollectionData struct {
	CreateCollectionData
	Rules       []CollectionRule `json:"rules,omitempty"`
	Disjunctive *bool            `json:"disjunctive,omitempty"`
}

// CollectionListParams filter collection list and count requests.
type CollectionListParams struct {
	ListParams
	Handle    string
	ProductID int64
	Published *bool
}

func (p *CollectionListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "handle", p.Handle)
	addInt64(v, "product_id", p.ProductID)
	addBool(v, "published", p.Published)
	return v
}

// CollectionsService wraps the collection endpoints.
type CollectionsService struct {
	client *Client
}

// List returns a page of collections.
func (s *CollectionsService) List(ctx context.Context, params *CollectionListParams) ([]Collection, error) {
	var env struct {
		Collections []Collection `json:"collections"`
	}
	if err := s.client.Get(ctx, "/admin/collections.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Collections, nil
}

// Get returns a single collection by id.
func (s *CollectionsService) Get(ctx context.Context, id int64) (*Collection, error) {
	var env struct {
		Collection Collection `json:"collection"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/collections/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Collection, nil
}

// CreateCustom creates a hand-picked collection.
func (s *CollectionsService) CreateCustom(ctx context.Context, data CreateCollectionData) (*Collection, error) {
	var env struct {
		Collection Collection `json:"collection"`
	}
	body := map[string]CreateCollectionData{"collection": data}
	if err := s.client.Post(ctx, "/admin/custom_collections.json", body, &env); err != nil {
		return nil, err
	}
	return &env.Collection, nil
}

// CreateSmart creates a rule-driven collection.
func (s *CollectionsService) CreateSmart(ctx context.Context, data CreateSmartCollectionData) (*Collection, error) {
	var env struct {
		SmartCollection Collection `json:"smart_collection"`
	}
	body := map[string]CreateSmartCollectionData{"smart_collection": data}
	if err := s.client.Post(ctx, "/admin/smart_collections.json", body, &env); err != nil {
		return nil, err
	}
	return &env.SmartCollection, nil
}

// UpdateCustom updates a hand-picked collection.
func (s *CollectionsService) UpdateCustom(ctx context.Context, id int64, data CreateCollectionData) (*Collection, error) {
	var env struct {
		Collection Collection `json:"collection"`
	}
	body := map[string]CreateCollectionData{"collection": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/custom_collections/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.Collection, nil
}

// UpdateSmart updates a rule-driven collection.
func (s *CollectionsService) UpdateSmart(ctx context.Context, id int64, data CreateSmartCollectionData) (*Collection, error) {
	var env struct {
		SmartCollection Collection `json:"smart_collection"`
	}
	body := map[string]CreateSmartCollectionData{"smart_collection": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/smart_collections/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.SmartCollection, nil
}

// DeleteCustom deletes a hand-picked collection.
func (s *CollectionsService) DeleteCustom(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/custom_collections/%d.json", id))
}

// DeleteSmart deletes a rule-driven collection.
func (s *CollectionsService) DeleteSmart(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/smart_collections/%d.json", id))
}

// Count returns the total number of collections matching the filters.
func (s *CollectionsService) Count(ctx context.Context, params *CollectionListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/collections/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// SetProductOrder sets the manual product ordering of a collection.
func (s *CollectionsService) SetProductOrder(ctx context.Context, collectionID int64, productIDs []int64) (*Collection, error) {
	var env struct {
		Collection Collection `json:"collection"`
	}
	path := fmt.Sprintf("/admin/collections/%d/order.json", collectionID)
	body := map[string][]int64{"product_ids": productIDs}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Collection, nil
}

// AddProduct adds a product to a collection.
func (s *CollectionsService) AddProduct(ctx context.Context, collectionID, productID int64) error {
	path := fmt.Sprintf("/admin/collections/%d/products/%d.json", collectionID, productID)
	return s.client.Post(ctx, path, nil, nil)
}

// RemoveProduct removes a product from a collection.
func (s *CollectionsService) RemoveProduct(ctx context.Context, collectionID, productID int64) error {
	path := fmt.Sprintf("/admin/collections/%d/products/%d.json", collectionID, productID)
	return s.client.Delete(ctx, path)
}
