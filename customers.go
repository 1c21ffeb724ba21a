package sapo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Customer is a shopper account with its saved addresses.
type Customer struct {
	ID             int64     `json:"id"`
	Email          string    `json:"email"`
	FirstName      string    `json:"first_name,omitempty"`
	LastName       string    `json:"last_name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Note           string    `json:"note,omitempty"`
	Tags           string    `json:"tags,omitempty"`
	Company        string    `json:"company,omitempty"`
	VerifiedEmail  bool      `json:"verified_email"`
	TaxExempt      bool      `json:"tax_exempt"`
	OrdersCount    int       `json:"orders_count"`
	TotalSpent     float64   `json:"total_spent"`
	Addresses      []Address `json:"addresses"`
	DefaultAddress *Address  `json:"default_address,omitempty"`
	CreatedOn      string    `json:"created_on"`
	UpdatedOn      string    `json:"updated_on"`
}

// CreateCustomerData is the payload for creating or updating a customer.
type CreateCustomerData struct {
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Note      string    `json:"note,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	Company   string    `json:"company,omitempty"`
	TaxExempt *bool     `json:"tax_exempt,omitempty"`
	Addresses []Address `json:"addresses,omitempty"`
}

// CustomerListParams filter customer list and count requests.
type CustomerListParams struct {
	ListParams
}

func (p *CustomerListParams) values() url.Values {
	if p == nil {
		return nil
	}
	return p.ListParams.values()
}

// CustomerSearchParams drive the customer search endpoint.
type CustomerSearchParams struct {
	Query string
	Email string
	Phone string
	Limit int
}

func (p CustomerSearchParams) values() url.Values {
	v := url.Values{}
	addString(v, "query", p.Query)
	addString(v, "email", p.Email)
	addString(v, "phone", p.Phone)
	addInt(v, "limit", p.Limit)
	return v
}

// CustomersService wraps the customer endpoints.
type CustomersService struct {
	client *Client
}

// List returns a page of customers.
func (s *CustomersService) List(ctx context.Context, params *CustomerListParams) ([]Customer, error) {
	var env struct {
		Customers []Customer `json:"customers"`
	}
	if err := s.client.Get(ctx, "/admin/customers.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Customers, nil
}

// Get returns a single customer by id.
func (s *CustomersService) Get(ctx context.Context, id int64) (*Customer, error) {
	var env struct {
		Customer Customer `json:"customer"`
	}
	if err := s.client.Get(ctx, fmt.Sprintf("/admin/customers/%d.json", id), nil, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}

// Create creates a new customer.
func (s *CustomersService) Create(ctx context.Context, data CreateCustomerData) (*Customer, error) {
	var env struct {
		Customer Customer `json:"customer"`
	}
	body := map[string]CreateCustomerData{"customer": data}
	if err := s.client.Post(ctx, "/admin/customers.json", body, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}

// Update updates an existing customer.
func (s *CustomersService) Update(ctx context.Context, id int64, data CreateCustomerData) (*Customer, error) {
	var env struct {
		Customer Customer `json:"customer"`
	}
	body := map[string]CreateCustomerData{"customer": data}
	if err := s.client.Put(ctx, fmt.Sprintf("/admin/customers/%d.json", id), body, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}

// Delete deletes a customer.
func (s *CustomersService) Delete(ctx context.Context, id int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("/admin/customers/%d.json", id))
}

// Count returns the total number of customers matching the filters.
func (s *CustomersService) Count(ctx context.Context, params *CustomerListParams) (int, error) {
	var env struct {
		Count int `json:"count"`
	}
	if err := s.client.Get(ctx, "/admin/customers/count.json", params.values(), &env); err != nil {
		return 0, err
	}
	return env.Count, nil
}

// Search finds customers by free-text query, email, or phone.
func (s *CustomersService) Search(ctx context.Context, params CustomerSearchParams) ([]Customer, error) {
	var env struct {
		Customers []Customer `json:"customers"`
	}
	if err := s.client.Get(ctx, "/admin/customers/search.json", params.values(), &env); err != nil {
		return nil, err
	}
	return env.Customers, nil
}

// GetByEmail returns the customer with the given email, or nil when no
// customer matches.
func (s *CustomersService) GetByEmail(ctx context.Context, email string) (*Customer, error) {
	customers, err := s.Search(ctx, CustomerSearchParams{Email: email, Limit: 1})
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	if len(customers) == 0 {
		return nil, nil
	}
	return &customers[0], nil
}

// SetDefaultAddress marks one of the customer's addresses as default.
func (s *CustomersService) SetDefaultAddress(ctx context.Context, customerID, addressID int64) (*Customer, error) {
	var env struct {
		Customer Customer `json:"customer"`
	}
	path := fmt.Sprintf("/admin/customers/%d/addresses/%d/default.json", customerID, addressID)
	if err := s.client.Put(ctx, path, nil, &env); err != nil {
		return nil, err
	}
	return &env.Customer, nil
}
