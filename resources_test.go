package sapo_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epoxyteam/sapo-client-sdk"
)

// recordedRequest captures what the server saw for path/body assertions.
type recordedRequest struct {
	method string
	path   string
	query  url.Values
	body   []byte
}

func recordingServer(t *testing.T, response string) (*sapo.Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.Query()
		rec.body, _ = io.ReadAll(r.Body)
		w.Write([]byte(response))
	}))
	return client, rec
}

func TestProducts_ListParams(t *testing.T) {
	client, rec := recordingServer(t, `{"products":[{"id":1,"name":"Mug"}]}`)

	products, err := client.Products.List(context.Background(), &sapo.ProductListParams{
		ListParams: sapo.ListParams{Page: 2, Limit: 50},
		Vendor:     "Acme",
		Published:  sapo.Bool(true),
	})
	require.NoError(t, err)
	require.Len(t, products, 1)

	assert.Equal(t, "/admin/products.json", rec.path)
	assert.Equal(t, "2", rec.query.Get("page"))
	assert.Equal(t, "50", rec.query.Get("limit"))
	assert.Equal(t, "Acme", rec.query.Get("vendor"))
	assert.Equal(t, "true", rec.query.Get("published"))
}

func TestProducts_CreateWrapsEnvelope(t *testing.T) {
	client, rec := recordingServer(t, `{"product":{"id":7,"name":"Mug"}}`)

	product, err := client.Products.Create(context.Background(), sapo.CreateProductData{Name: "Mug"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), product.ID)

	assert.Equal(t, http.MethodPost, rec.method)

	var sent map[string]map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	assert.Equal(t, "Mug", sent["product"]["name"])
}

func TestOrders_Actions(t *testing.T) {
	cases := []struct {
		name string
		call func(*sapo.Client) (*sapo.Order, error)
		path string
	}{
		{"cancel", func(c *sapo.Client) (*sapo.Order, error) {
			return c.Orders.Cancel(context.Background(), 9)
		}, "/admin/orders/9/cancel.json"},
		{"paid", func(c *sapo.Client) (*sapo.Order, error) {
			return c.Orders.MarkAsPaid(context.Background(), 9)
		}, "/admin/orders/9/paid.json"},
		{"fulfilled", func(c *sapo.Client) (*sapo.Order, error) {
			return c.Orders.MarkAsFulfilled(context.Background(), 9)
		}, "/admin/orders/9/fulfilled.json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, rec := recordingServer(t, `{"order":{"id":9}}`)
			order, err := tc.call(client)
			require.NoError(t, err)
			assert.Equal(t, int64(9), order.ID)
			assert.Equal(t, http.MethodPost, rec.method)
			assert.Equal(t, tc.path, rec.path)
		})
	}
}

func TestCustomers_GetByEmail(t *testing.T) {
	client, rec := recordingServer(t, `{"customers":[{"id":3,"email":"a@b.vn"}]}`)

	customer, err := client.Customers.GetByEmail(context.Background(), "a@b.vn")
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, int64(3), customer.ID)

	assert.Equal(t, "/admin/customers/search.json", rec.path)
	assert.Equal(t, "a@b.vn", rec.query.Get("email"))
}

func TestCustomers_GetByEmail_NoMatchIsNil(t *testing.T) {
	client, _ := recordingServer(t, `{"customers":[]}`)

	customer, err := client.Customers.GetByEmail(context.Background(), "nobody@b.vn")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestCustomers_GetByEmail_NotFoundIsNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such customer"}`))
	}))

	customer, err := client.Customers.GetByEmail(context.Background(), "nobody@b.vn")
	require.NoError(t, err)
	assert.Nil(t, customer)
}

func TestPriceRules_LookupDiscountCode(t *testing.T) {
	client, rec := recordingServer(t, `{"discount_code":{"id":11,"code":"SUMMER"}}`)

	dc, err := client.PriceRules.LookupDiscountCode(context.Background(), "SUMMER")
	require.NoError(t, err)
	require.NotNil(t, dc)
	assert.Equal(t, "SUMMER", dc.Code)

	assert.Equal(t, "/admin/discount_codes/lookup.json", rec.path)
	assert.Equal(t, "SUMMER", rec.query.Get("code"))
}

func TestPriceRules_LookupDiscountCode_NotFoundIsNil(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"no such code"}`))
	}))

	dc, err := client.PriceRules.LookupDiscountCode(context.Background(), "GONE")
	require.NoError(t, err)
	assert.Nil(t, dc)
}

func TestMetafields_OwnerScopedPaths(t *testing.T) {
	client, rec := recordingServer(t, `{"metafields":[]}`)

	owner := sapo.MetafieldOwner{Type: "product", ID: 42}
	_, err := client.Metafields.List(context.Background(), owner, nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin/products/42/metafields.json", rec.path)
}

func TestCollections_SetProductOrder(t *testing.T) {
	client, rec := recordingServer(t, `{"collection":{"id":5}}`)

	_, err := client.Collections.SetProductOrder(context.Background(), 5, []int64{3, 1, 2})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/admin/collections/5/order.json", rec.path)

	var sent map[string][]int64
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	assert.Equal(t, []int64{3, 1, 2}, sent["product_ids"])
}

func TestInventory_AdjustQuantity(t *testing.T) {
	client, rec := recordingServer(t, `{"inventory_item":{"id":8}}`)

	_, err := client.Inventory.AdjustQuantity(context.Background(), 8, sapo.InventoryAdjustment{
		LocationID: 1,
		Quantity:   -3,
	})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/admin/inventory_items/8/adjust.json", rec.path)
}

func TestFulfillments_OrderScopedPaths(t *testing.T) {
	client, rec := recordingServer(t, `{"fulfillments":[]}`)

	_, err := client.Fulfillments.List(context.Background(), 77, nil)
	require.NoError(t, err)
	assert.Equal(t, "/admin/orders/77/fulfillments.json", rec.path)
}

func TestPages_GetByHandle_EmptyIsNil(t *testing.T) {
	client, rec := recordingServer(t, `{"pages":[]}`)

	page, err := client.Pages.GetByHandle(context.Background(), "about-us")
	require.NoError(t, err)
	assert.Nil(t, page)
	assert.Equal(t, "about-us", rec.query.Get("handle"))
}

func TestBlogs_CommentSpamCheck(t *testing.T) {
	client, rec := recordingServer(t, `{"spam_check":{"spam":true,"score":0.97}}`)

	result, err := client.Blogs.SpamCheck(context.Background(), 1, 2, 3)
	require.NoError(t, err)
	assert.True(t, result.Spam)
	assert.Equal(t, "/admin/blogs/1/articles/2/comments/3/spam_check.json", rec.path)
}

func TestWebhooks_CRUDPaths(t *testing.T) {
	client, rec := recordingServer(t, `{"webhook":{"id":4,"topic":"orders/create"}}`)

	wh, err := client.Webhooks.Create(context.Background(), sapo.CreateWebhookData{
		Topic:   "orders/create",
		Address: "https://app.example.com/hooks",
	})
	require.NoError(t, err)
	assert.Equal(t, "orders/create", wh.Topic)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/admin/webhooks.json", rec.path)
}

func TestWebhooks_VerifySignature(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	body := []byte(`{"id":1}`)
	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write(body)
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.True(t, client.Webhooks.VerifySignature(body, sig))
	assert.False(t, client.Webhooks.VerifySignature([]byte(`{"id":2}`), sig))
}
