package sapo

import (
	"context"
	"fmt"
	"net/url"
)

// InventoryItem tracks stock for a product variant across locations.
type InventoryItem struct {
	ID                  int64               `json:"id"`
	SKU                 string              `json:"sku,omitempty"`
	Tracked             bool                `json:"tracked"`
	VariantID           int64               `json:"variant_id"`
	ProductID           int64               `json:"product_id"`
	LocationInventories []LocationInventory `json:"location_inventories"`
	CreatedOn           string              `json:"created_on"`
	UpdatedOn           string              `json:"updated_on"`
}

// LocationInventory is the stock level of an item at one location.
type LocationInventory struct {
	ID           int64  `json:"id"`
	LocationID   int64  `json:"location_id"`
	Available    int    `json:"available"`
	MaxOrderable int    `json:"max_orderable,omitempty"`
	Tracked      bool   `json:"tracked"`
	CreatedOn    string `json:"created_on"`
	UpdatedOn    string `json:"updated_on"`
}

// Location is a stock-keeping site.
type Location struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Address1 string `json:"address1,omitempty"`
	Address2 string `json:"address2,omitempty"`
	City     string `json:"city,omitempty"`
	Province string `json:"province,omitempty"`
	Country  string `json:"country,omitempty"`
	Zip      string `json:"zip,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Active   bool   `json:"active"`
}

// InventoryAdjustment changes an item's quantity at a location.
type InventoryAdjustment struct {
	LocationID int64  `json:"location_id"`
	Quantity   int    `json:"quantity"`
	Action     string `json:"action"`
	Reason     string `json:"reason,omitempty"`
}

// UpdateInventoryLevelData sets an absolute stock level at a location.
type UpdateInventoryLevelData struct {
	Available        int   `json:"available"`
	DisconnectIfZero *bool `json:"disconnect_if_zero,omitempty"`
}

// InventoryTransferData moves stock between locations.
type InventoryTransferData struct {
	FromLocationID int64  `json:"from_location_id"`
	ToLocationID   int64  `json:"to_location_id"`
	Quantity       int    `json:"quantity"`
	Reason         string `json:"reason,omitempty"`
}

// InventoryTransfer is a recorded stock movement.
type InventoryTransfer struct {
	ID             int64  `json:"id"`
	InventoryItem  int64  `json:"inventory_item_id"`
	FromLocationID int64  `json:"from_location_id"`
	ToLocationID   int64  `json:"to_location_id"`
	Quantity       int    `json:"quantity"`
	Status         string `json:"status"`
	CreatedOn      string `json:"created_on"`
}

// InventoryListParams filter inventory list and count requests.
type InventoryListParams struct {
	ListParams
	ProductID  int64
	VariantID  int64
	SKU        string
	LocationID int64
	Tracked    *bool
}

func (p *InventoryListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addInt64(v, "product_id", p.ProductID)
	addInt64(v, "variant_id", p.VariantID)
	addString(v, "sku", p.SKU)
	addInt64(v, "location_id", p.LocationID)
	addBool(v, "tracked", p.Tracked)
	return v
}

// InventoryService wraps the inventory and location endpoints.
type InventoryService struct {
	client *Client
}

// List returns a page of inventory items.
func (s *InventoryService) List(ctx context.Context, params *InventoryListParams) ([]InventoryItem, error) {
	var env struct {
		InventoryItems []InventoryItem `json:"inventory_items"`
	}
	if err := s.client.Get(ctx, "/admin/inventory_items.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.InventoryItems, nil
}

// Get returns a single inventory item by id.
func (s *InventoryService) Get(ctx context.Context, id int64) (*InventoryItem, error) {
	var env struct {
		InventoryItem InventoryItem `json:"inventory_item"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/inventory_items/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.InventoryItem, nil
}

// AdjustQuantity applies a relative quantity change at a location.
func (s *InventoryService) AdjustQuantity(ctx context.Context, itemID int64, data InventoryAdjustment) (*InventoryItem, error) {
	var env struct {
		InventoryItem InventoryItem `json:"inventory_item"`
	}
	path := fmt.Sprintf("/admin/inventory_items/%d/adjust.json", itemID)
	body := map[string]InventoryAdjustment{"adjustment": data}
	if err := s.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.InventoryItem, nil
}

// SetLevel sets an absolute stock level for an item at a location.
func (s *InventoryService) SetLevel(ctx context.Context, itemID, locationID int64, data UpdateInventoryLevelData) (*InventoryItem, error) {
	var env struct {
		InventoryItem InventoryItem `json:"inventory_item"`
	}
	path := fmt.Sprintf("/admin/inventory_items/%d/locations/%d.json", itemID, locationID)
	body := map[string]UpdateInventoryLevelData{"level": data}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.InventoryItem, nil
}

// Transfer moves stock of an item between locations.
func (s *InventoryService) Transfer(ctx context.Context, itemID int64, data InventoryTransferData) (*InventoryTransfer, error) {
	var env struct {
		InventoryTransfer InventoryTransfer `json:"inventory_transfer"`
	}
	path := fmt.Sprintf("/admin/inventory_items/%d/transfers.json", itemID)
	body := map[string]InventoryTransferData{"transfer": data}
	if err := s.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.InventoryTransfer, nil
}

// GetTransfer returns a recorded stock movement.
func (s *InventoryService) GetTransfer(ctx context.Context, itemID, transferID int64) (*InventoryTransfer, error) {
	var env struct {
		InventoryTransfer InventoryTransfer `json:"inventory_transfer"`
	}
	path := fmt.Sprintf("/admin/inventory_items/%d/transfers/%d.json", itemID, transferID)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.InventoryTransfer, nil
}

// CancelTransfer cancels a pending stock movement.
func (s *InventoryService) CancelTransfer(ctx context.Context, itemID, transferID int64) (*InventoryTransfer, error) {
	var env struct {
		InventoryTransfer InventoryTransfer `json:"inventory_transfer"`
	}
	path := fmt.Sprintf("/admin/inventory_items/%d/transfers/%d/cancel.json", itemID, transferID)
	if err := s.client.Post(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.InventoryTransfer, nil
}

// ListLocations returns all stock locations.
func (s *InventoryService) ListLocations(ctx context.Context) ([]Location, error) {
	var env struct {
		Locations []Location `json:"locations"`
	}
	if err := s.client.Get(ctx, "/admin/locations.json", nil, &env); err != nil {
		return nil, err
	}
	return env.Locations, nil
}

// GetLocation returns a single location by id.
func (s *InventoryService) GetLocation(ctx context.Context, id int64) (*Location, error) {
	var env struct {
		Location Location `json:"location"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/locations/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Location, nil
}

// Count returns the total number of inventory items matching the filters.
func (s *InventoryService) Count(ctx context.Context, params *InventoryListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/inventory_items/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}
