package sapo

import (
	"net/url"
	"strconv"
	"strings"
)

// ListParams are the pagination and date-window filters shared by list
// endpoints. Zero fields are omitted from the query string.
type ListParams struct {
	Page         int
	Limit        int
	Fields       []string
	CreatedOnMin string
	CreatedOnMax string
	UpdatedOnMin string
	UpdatedOnMax string
}

func (p ListParams) values() url.Values {
	v := url.Values{}
	addInt(v, "page", p.Page)
	addInt(v, "limit", p.Limit)
	if len(p.Fields) > 0 {
		v.Set("fields", strings.Join(p.Fields, ","))
	}
	addString(v, "created_on_min", p.CreatedOnMin)
	addString(v, "created_on_max", p.CreatedOnMax)
	addString(v, "updated_on_min", p.UpdatedOnMin)
	addString(v, "updated_on_max", p.UpdatedOnMax)
	return v
}

// Address is a postal address attached to orders, customers, and
// fulfillments. An opaque payload to this SDK.
type Address struct {
	ID        int64  `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Company   string `json:"company,omitempty"`
	Address1  string `json:"address1,omitempty"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city,omitempty"`
	Province  string `json:"province,omitempty"`
	Country   string `json:"country,omitempty"`
	Zip       string `json:"zip,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Default   bool   `json:"default,omitempty"`
}

func addInt(v url.Values, key string, n int) {
	if n != 0 {
		v.Set(key, strconv.Itoa(n))
	}
}

func addInt64(v url.Values, key string, n int64) {
	if n != 0 {
		v.Set(key, strconv.FormatInt(n, 10))
	}
}

func addString(v url.Values, key, value string) {
	if value != "" {
		v.Set(key, value)
	}
}

func addBool(v url.Values, key string, b *bool) {
	if b != nil {
		v.Set(key, strconv.FormatBool(*b))
	}
}

// Bool returns a pointer to the given bool, for optional boolean fields.
func Bool(b bool) *bool { return &b }
