package sapo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// PriceRule is a discount definition.
type PriceRule struct {
	ID                        int64   `json:"id"`
	Title                     string  `json:"title"`
	TargetType                string  `json:"target_type"`
	TargetSelection           string  `json:"target_selection"`
	AllocationMethod          string  `json:"allocation_method"`
	ValueType                 string  `json:"value_type"`
	Value                     float64 `json:"value"`
	OncePerCustomer           bool    `json:"once_per_customer"`
	UsageLimitPerCustomer     int     `json:"usage_limit_per_customer,omitempty"`
	UsageLimit                int     `json:"usage_limit,omitempty"`
	CustomerSelection         string  `json:"customer_selection"`
	StartsAt                  string  `json:"starts_at"`
	EndsAt                    string  `json:"ends_at,omitempty"`
	EntitledProductIDs        []int64 `json:"entitled_product_ids"`
	EntitledVariantIDs        []int64 `json:"entitled_variant_ids"`
	EntitledCollectionIDs     []int64 `json:"entitled_collection_ids"`
	PrerequisiteProductIDs    []int64 `json:"prerequisite_product_ids"`
	PrerequisiteVariantIDs    []int64 `json:"prerequisite_variant_ids"`
	PrerequisiteCollectionIDs []int64 `json:"prerequisite_collection_ids"`
	CreatedOn                 string  `json:"created_on"`
	UpdatedOn                 string  `json:"updated_on"`
}

// DiscountCode is a redeemable code attached to a price rule.
type DiscountCode struct {
	ID          int64  `json:"id"`
	PriceRuleID int64  `json:"price_rule_id"`
	Code        string `json:"code"`
	UsageCount  int    `json:"usage_count"`
	CreatedOn   string `json:"created_on"`
	UpdatedOn   string `json:"updated_on"`
}

// CreatePriceRuleData is the payload for creating or updating a price rule.
type CreatePriceRuleData struct {
	Title                 string  `json:"title,omitempty"`
	TargetType            string  `json:"target_type,omitempty"`
	TargetSelection       string  `json:"target_selection,omitempty"`
	AllocationMethod      string  `json:"allocation_method,omitempty"`
	ValueType             string  `json:"value_type,omitempty"`
	Value                 float64 `json:"value,omitempty"`
	StartsAt              string  `json:"starts_at,omitempty"`
	EndsAt                string  `json:"ends_at,omitempty"`
	OncePerCustomer       *bool   `json:"once_per_customer,omitempty"`
	UsageLimit            int     `json:"usage_limit,omitempty"`
	UsageLimitPerCustomer int     `json:"usage_limit_per_customer,omitempty"`
	CustomerSelection     string  `json:"customer_selection,omitempty"`
	EntitledProductIDs    []int64 `json:"entitled_product_ids,omitempty"`
	EntitledVariantIDs    []int64 `json:"entitled_variant_ids,omitempty"`
	EntitledCollectionIDs []int64 `json:"entitled_collection_ids,omitempty"`
}

// PriceRuleListParams filter price rule list and count requests.
type PriceRuleListParams struct {
	ListParams
	StartsAtMin string
	StartsAtMax string
	EndsAtMin   string
	EndsAtMax   string
}

func (p *PriceRuleListParams) values() url.Values {
	if p == nil {
		return nil
	}
	v := p.ListParams.values()
	addString(v, "starts_at_min", p.StartsAtMin)
	addString(v, "starts_at_max", p.StartsAtMax)
	addString(v, "ends_at_min", p.EndsAtMin)
	addString(v, "ends_at_max", p.EndsAtMax)
	return v
}

// PriceRulesService wraps the price rule and discount code endpoints.
type PriceRulesService struct {
	client *Client
}

// List returns a page of price rules.
func (s *PriceRulesService) List(ctx context.Context, params *PriceRuleListParams) ([]PriceRule, error) {
	var env struct {
		PriceRules []PriceRule `json:"price_rules"`
	}
	if err := s.client.Get(ctx, "/admin/price_rules.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.PriceRules, nil
}

// Get returns a single price rule by id.
func (s *PriceRulesService) Get(ctx context.Context, id int64) (*PriceRule, error) {
	var env struct {
		PriceRule PriceRule `json:"price_rule"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/price_rules/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.PriceRule, nil
}

// Create creates a new price rule.
func (s *PriceRulesService) Create(ctx context.Context, data CreatePriceRuleData) (*PriceRule, error) {
	var env struct {
		PriceRule PriceRule `json:"price_rule"`
	}
	body := map[string]CreatePriceRuleData{"price_rule": data}
	if err := s.client.Post(ctx, "/admin/price_rules.json", body, &env); err != nil {
		return nil, err
	}
	return &env.PriceRule, nil
}

// Update updates an existing price rule.
func (s *PriceRulesService) Update(ctx context.Context, id int64, data CreatePriceRuleData) (*PriceRule, error) {
	var env struct {
		PriceRule PriceRule `json:"price_rule"`
	}
	body := map[string]CreatePriceRuleData{"price_rule": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/price_rules/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.PriceRule, nil
}

// Delete deletes a price rule.
func (s *PriceRulesService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/price_rules/%d.json", id))
}

// Count returns the total number of price rules matching the filters.
func (s *PriceRulesService) Count(ctx context.Context, params *PriceRuleListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/price_rules/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// ListDiscountCodes returns the discount codes of a price rule.
func (s *PriceRulesService) ListDiscountCodes(ctx context.Context, priceRuleID int64, params *ListParams) ([]DiscountCode, error) {
	var env struct {
		DiscountCodes []DiscountCode `json:"discount_codes"`
	}
	var q url.Values
	if params != nil {
		q = params.values()
	}
	path := fmt.Sprintf("/admin/price_rules/%d/discount_codes.json", priceRuleID)
	if err := s.client.Get(ctx, path, q, &env); err != nil {
		return nil, err
	}
	return env.DiscountCodes, nil
}

// GetDiscountCode returns a single discount code.
func (s *PriceRulesService) GetDiscountCode(ctx context.Context, priceRuleID, id int64) (*DiscountCode, error) {
	var env struct {
		DiscountCode DiscountCode `json:"discount_code"`
	}
	path := fmt.Sprintf("/admin/price_rules/%d/discount_codes/%d.json", priceRuleID, id)
	if err := s.client.Get(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.DiscountCode, nil
}

// CreateDiscountCode creates a code under a price rule.
func (s *PriceRulesService) CreateDiscountCode(ctx context.Context, priceRuleID int64, code string) (*DiscountCode, error) {
	var env struct {
		DiscountCode DiscountCode `json:"discount_code"`
	}
	path := fmt.Sprintf("/admin/price_rules/%d/discount_codes.json", priceRuleID)
	body := map[string]map[string]string{"discount_code": {"code": code}}
	if err := s.client.Post(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.DiscountCode, nil
}

// UpdateDiscountCode changes the code string of a discount code.
func (s *PriceRulesService) UpdateDiscountCode(ctx context.Context, priceRuleID, id int64, code string) (*DiscountCode, error) {
	var env struct {
		DiscountCode DiscountCode `json:"discount_code"`
	}
	path := fmt.Sprintf("/admin/price_rules/%d/discount_codes/%d.json", priceRuleID, id)
	body := map[string]map[string]string{"discount_code": {"code": code}}
	if err := s.client.Put(ctx, path, body, &env); err != nil {
		return nil, err
	}
	return &env.DiscountCode, nil
}

// DeleteDiscountCode deletes a discount code.
func (s *PriceRulesService) DeleteDiscountCode(ctx context.Context, priceRuleID, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/price_rules/%d/discount_codes/%d.json", priceRuleID, id))
}

// LookupDiscountCode finds a discount code by its code string, or nil when
// no code matches.
func (s *PriceRulesService) LookupDiscountCode(ctx context.Context, code string) (*DiscountCode, error) {
	var env struct {
		DiscountCode DiscountCode `json:"discount_code"`
	}
	q := url.Values{}
	q.Set("code", code)
	if err := s.client.Get(ctx, "/admin/discount_codes/lookup.json", q, &env); err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	return &env.DiscountCode, nil
}
