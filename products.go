package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// Product is a catalog product with its variants and options.
type Product struct {
	ID          int64            `json:"id"`
	Name        string           `json:"name"`
	Alias       string           `json:"alias"`
	Content     string           `json:"content,omitempty"`
	Summary     string           `json:"summary,omitempty"`
	Vendor      string           `json:"vendor,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
	Tags        string           `json:"tags,omitempty"`
	Variants    []ProductVariant `json:"variants"`
	Options     []ProductOption  `json:"options"`
	CreatedOn   string           `json:"created_on"`
	ModifiedOn  string           `json:"modified_on"`
	PublishedOn string           `json:"published_on,omitempty"`
}

// ProductVariant is a purchasable variation of a product.
type ProductVariant struct {
	ID                  int64   `json:"id"`
	Title               string  `json:"title"`
	Price               float64 `json:"price"`
	CompareAtPrice      float64 `json:"compare_at_price,omitempty"`
	Barcode             string  `json:"barcode,omitempty"`
	SKU                 string  `json:"sku,omitempty"`
	Position            int     `json:"position"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryManagement string  `json:"inventory_management,omitempty"`
	InventoryPolicy     string  `json:"inventory_policy,omitempty"`
	Weight              float64 `json:"weight,omitempty"`
	WeightUnit          string  `json:"weight_unit,omitempty"`
	RequiresShipping    bool    `json:"requires_shipping,omitempty"`
}

// ProductOption is a named axis of variation (size, color).
type ProductOption struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// CreateProductData is the payload for creating or updating a product.
type CreateProductData struct {
	Name        string           `json:"name,omitempty"`
	Content     string           `json:"content,omitempty"`
	Vendor      string           `json:"vendor,omitempty"`
	ProductType string           `json:"product_type,omitempty"`
	Tags        string           `json:"tags,omitempty"`
	Variants    []ProductVariant `json:"variants,omitempty"`
	Options     []ProductOption  `json:"options,omitempty"`
}

// ProductListParams filter product list and count requests.
type ProductListParams struct {
	ListParams
	Vendor       string
	ProductType  string
	CollectionID int64
	Published    *bool
}

func (p *ProductListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "vendor", p.Vendor)
	addString(v, "product_type", p.ProductType)
	addInt64(v, "collection_id", p.CollectionID)
	addBool(v, "published", p.Published)
	return v
}

// ProductsService wraps the product endpoints.
type ProductsService struct {
	client *Client
}

// List returns a page of products.
func (s *ProductsService) List(ctx context.Context, params *ProductListParams) ([]Product, error) {
	var env struct {
		Products []Product `json:"products"`
	}
	if err := s.client.Get(ctx, "/admin/products.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Products, nil
}

// Get returns a single product by id.
func (s *ProductsService) Get(ctx context.Context, id int64) (*Product, error) {
	var env struct {
		Product Product `json:"product"`
	}
	path := fmt.Sprintf("/admin/products/%d.json", id)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// Create creates a new product.
func (s *ProductsService) Create(ctx context.Context, data CreateProductData) (*Product, error) {
	var env struct {
		Product Product `json:"product"`
	}
	body := map[string]CreateProductData{"product": data}
	if err := s.client.Post(ctx, "/admin/products.json", body, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// Update updates an existing product.
func (s *ProductsService) Update(ctx context.Context, id int64, data CreateProductData) (*Product, error) {
	var env struct {
		Product Product `json:"product"`
	}
	path := fmt.Sprintf("/admin/products/%d.json", id)
	body := map[string]CreateProductData{"product": data}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.Product, nil
}

// Delete deletes a product.
func (s *ProductsService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/products/%d.json", id))
}

// Count returns the total number of products matching the filters.
func (s *ProductsService) Count(ctx context.Context, params *ProductListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/products/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}
