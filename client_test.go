package sapo_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epoxyteam/sapo-client-sdk"
)

// rewriteRoundTripper sends every request to the test server regardless
// of the host the client built, since the transport always dials https.
type rewriteRoundTripper struct {
	host string
}

func (rt rewriteRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = rt.host
	return http.DefaultTransport.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.Handler, opts ...sapo.Option) *sapo.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	opts = append([]sapo.Option{
		sapo.WithStore("demo.mysapo.net"),
		sapo.WithHTTPClient(&http.Client{Transport: rewriteRoundTripper{host: u.Host}}),
	}, opts...)

	client, err := sapo.NewClient(sapo.DirectCredentials("key", "secret"), opts...)
	require.NoError(t, err)
	return client
}

func TestClient_GetDecodesEnvelope(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"product":{"id":42,"name":"Mug"}}`))
	}))

	product, err := client.Products.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, int64(42), product.ID)
	assert.Equal(t, "Mug", product.Name)

	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, "/admin/products/42.json", got.URL.Path)
	assert.Equal(t, "application/json", got.Header.Get("Accept"))
	assert.NotEmpty(t, got.Header.Get("X-Request-Id"))
}

func TestClient_DirectCredentialsUseBasicAuth(t *testing.T) {
	var authz string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz = r.Header.Get("Authorization")
		w.Write([]byte(`{"products":[]}`))
	}))

	_, err := client.Products.List(context.Background(), nil)
	require.NoError(t, err)

	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("key:secret"))
	assert.Equal(t, expected, authz)
}

func TestClient_AccessTokenHeaderWinsOverBasicAuth(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"products":[]}`))
	}))

	client.SetAccessToken("tok-7")

	_, err := client.Products.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "tok-7", got.Header.Get("X-Sapo-Access-Token"))
	assert.Empty(t, got.Header.Get("Authorization"))
}

func TestClient_SuccessConsumesOneToken(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[]}`))
	}))

	_, err := client.Products.List(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, sapo.MinuteLimit-1, client.RateLimits().Remaining)
}

func TestClient_APIErrorDoesNotConsume(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Not found"}`))
	}))

	_, err := client.Products.Get(context.Background(), 999)

	var nf *sapo.NotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, sapo.MinuteLimit, client.RateLimits().Remaining)
}

func TestClient_CallLimitHeaderSyncsBuckets(t *testing.T) {
	cases := []struct {
		header    string
		remaining int
	}{
		{"38/40", 2},
		{"5", 5},
	}
	for _, tc := range cases {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Sapo-Api-Call-Limit", tc.header)
			w.Write([]byte(`{"products":[]}`))
		}))

		_, err := client.Products.List(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, tc.remaining, client.RateLimits().Remaining, "header %q", tc.header)
	}
}

func TestClient_ExhaustedLimiterRejectsBeforeDispatch(t *testing.T) {
	dispatched := false
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dispatched = true
		w.Header().Set("X-Sapo-Api-Call-Limit", "40/40")
		w.Write([]byte(`{"products":[]}`))
	}))

	// First call succeeds and learns from the server that the window is
	// spent; the second is rejected locally.
	_, err := client.Products.List(context.Background(), nil)
	require.NoError(t, err)

	dispatched = false
	_, err = client.Products.List(context.Background(), nil)

	var rle *sapo.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, "Minute rate limit exceeded", rle.Message)
	assert.False(t, dispatched)
}

func TestClient_TimeoutIsNetworkError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"products":[]}`))
	}), sapo.WithTimeout(50*time.Millisecond))

	_, err := client.Products.List(context.Background(), nil)

	var netErr *sapo.NetworkError
	require.True(t, errors.As(err, &netErr))

	// A request that never produced a response must not be debited.
	assert.Equal(t, sapo.MinuteLimit, client.RateLimits().Remaining)
}

func TestClient_DefaultHeadersSent(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"products":[]}`))
	}), sapo.WithDefaultHeaders(map[string]string{"X-Client-Name": "sdk-tests"}))

	_, err := client.Products.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "sdk-tests", got.Header.Get("X-Client-Name"))
}

func TestClient_DoWithPerCallHeaders(t *testing.T) {
	var got *http.Request
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"shop":{"id":1}}`))
	}))

	var env struct {
		Shop struct {
			ID int64 `json:"id"`
		} `json:"shop"`
	}
	err := client.Do(context.Background(), http.MethodGet, "/admin/shop.json", nil, nil, &env,
		&sapo.RequestOptions{Headers: map[string]string{"X-Feature-Flag": "beta"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), env.Shop.ID)
	assert.Equal(t, "beta", got.Header.Get("X-Feature-Flag"))
}

func TestClient_ServerRateLimitResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message":"Slow down"}`))
	}))

	_, err := client.Products.List(context.Background(), nil)

	var rle *sapo.RateLimitError
	require.True(t, errors.As(err, &rle))
	assert.Equal(t, 12, rle.RetryAfter)
	assert.Equal(t, "Slow down", rle.Message)
}

func TestClient_ValidationErrorFields(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"Validation failed","errors":{"name":["can't be blank"]}}`))
	}))

	_, err := client.Products.Create(context.Background(), sapo.CreateProductData{})

	var val *sapo.ValidationError
	require.True(t, errors.As(err, &val))
	assert.Contains(t, val.Fields, "name")
}

func TestClient_RequiresCredentials(t *testing.T) {
	_, err := sapo.NewClient(sapo.Credentials{})
	require.Error(t, err)

	_, err = sapo.NewClient(sapo.DirectCredentials("key", ""))
	require.Error(t, err)

	_, err = sapo.NewClient(sapo.OAuthCredentials("key", "secret", ""))
	require.Error(t, err)
}

type recordingMeter struct {
	requests []sapo.RequestEvent
	results  []sapo.ResultEvent
}

func (m *recordingMeter) OnRequest(e sapo.RequestEvent) { m.requests = append(m.requests, e) }
func (m *recordingMeter) OnResult(e sapo.ResultEvent)   { m.results = append(m.results, e) }

func TestClient_MeterSeesLifecycle(t *testing.T) {
	rec := &recordingMeter{}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products":[]}`))
	}), sapo.WithMeter(rec))

	_, err := client.Products.List(context.Background(), nil)
	require.NoError(t, err)

	require.Len(t, rec.requests, 1)
	assert.Equal(t, http.MethodGet, rec.requests[0].Method)
	assert.Equal(t, "/admin/products.json", rec.requests[0].Path)

	require.Len(t, rec.results, 1)
	assert.Equal(t, http.StatusOK, rec.results[0].Status)
	assert.NoError(t, rec.results[0].Err)
}

func TestClient_MeterSeesAdmissionRejection(t *testing.T) {
	rec := &recordingMeter{}
	limiter := sapo.NewRateLimiter()
	limiter.SyncRemaining(0)

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not dispatch when admission fails")
	}), sapo.WithMeter(rec), sapo.WithLimiter(limiter))

	_, err := client.Products.List(context.Background(), nil)
	require.Error(t, err)

	assert.Empty(t, rec.requests)
	require.Len(t, rec.results, 1)
	assert.Error(t, rec.results[0].Err)
	assert.Zero(t, rec.results[0].Status)
}
