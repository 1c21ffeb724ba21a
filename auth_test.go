package sapo

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-key"
	testSecret = "test-secret"
)

// signParams computes the signature the platform would attach to a
// callback with the given parameters.
func signParams(secret string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "hmac" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + params[k]
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strings.Join(pairs, "&")))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestAuthorizeURL(t *testing.T) {
	auth := NewAuth(OAuthCredentials(testKey, testSecret, "https://app.example.com/callback"))

	raw := auth.AuthorizeURL("demo.mysapo.net", []Scope{ScopeReadProducts, ScopeWriteOrders})

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "https", u.Scheme)
	assert.Equal(t, "demo.mysapo.net", u.Host)
	assert.Equal(t, "/admin/oauth/authorize", u.Path)

	q := u.Query()
	assert.Equal(t, testKey, q.Get("client_id"))
	assert.Equal(t, "read_products,write_orders", q.Get("scope"))
	assert.Equal(t, "https://app.example.com/callback", q.Get("redirect_uri"))
}

func TestVerifyHMAC(t *testing.T) {
	auth := NewAuth(OAuthCredentials(testKey, testSecret, "https://app.example.com/callback"))

	params := map[string]string{
		"code":      "abc123",
		"timestamp": "1700000000",
		"store":     "demo.mysapo.net",
	}
	sig := signParams(testSecret, params)

	assert.True(t, auth.VerifyHMAC(params, sig))

	// Any parameter change invalidates the signature.
	params["code"] = "abc124"
	assert.False(t, auth.VerifyHMAC(params, sig))
}

func TestVerifyHMAC_IgnoresHMACParam(t *testing.T) {
	auth := NewAuth(OAuthCredentials(testKey, testSecret, "https://app.example.com/callback"))

	params := map[string]string{"code": "abc123", "timestamp": "1700000000"}
	sig := signParams(testSecret, params)

	// The hmac key itself is excluded from the signed message.
	params["hmac"] = sig
	assert.True(t, auth.VerifyHMAC(params, sig))
}

func TestParseCallback(t *testing.T) {
	auth := NewAuth(OAuthCredentials(testKey, testSecret, "https://app.example.com/callback"))

	params, err := auth.ParseCallback("https://app.example.com/callback?code=abc&hmac=sig&timestamp=1700000000")
	require.NoError(t, err)
	assert.Equal(t, "abc", params.Code)
	assert.Equal(t, "sig", params.HMAC)
	assert.Equal(t, "1700000000", params.Timestamp)
}

func TestParseCallback_MissingParams(t *testing.T) {
	auth := NewAuth(OAuthCredentials(testKey, testSecret, "https://app.example.com/callback"))

	cases := []string{
		"https://app.example.com/callback",
		"https://app.example.com/callback?code=abc&hmac=sig",
		"https://app.example.com/callback?hmac=sig&timestamp=1700000000",
	}
	for _, raw := range cases {
		_, err := auth.ParseCallback(raw)
		var authErr *AuthenticationError
		require.True(t, errors.As(err, &authErr), "url %s", raw)
		assert.Equal(t, CodeInvalidCallbackParams, authErr.Code)
	}
}

// tokenServer stands in for the platform's token endpoint; the auth
// client is pointed at it through a host-rewriting transport since the
// real endpoint is always https.
func tokenServer(t *testing.T, handler http.HandlerFunc) (*Auth, string) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	auth := NewAuth(OAuthCredentials(testKey, testSecret, "https://app.example.com/callback"))
	auth.httpClient = &http.Client{Transport: rewriteTransport{host: u.Host}}
	return auth, "demo.mysapo.net"
}

type rewriteTransport struct {
	host string
}

func (rt rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = rt.host
	return http.DefaultTransport.RoundTrip(req)
}

func TestExchangeCode(t *testing.T) {
	auth, store := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/oauth/access_token", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, testKey, body["client_id"])
		assert.Equal(t, testSecret, body["client_secret"])
		assert.Equal(t, "auth-code", body["code"])

		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-42"})
	})

	token, err := auth.ExchangeCode(context.Background(), store, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, "tok-42", token.AccessToken)
}

func TestExchangeCode_Rejected(t *testing.T) {
	auth, store := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"code": "INVALID_CODE", "message": "code expired"})
	})

	_, err := auth.ExchangeCode(context.Background(), store, "stale-code")

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, CodeTokenExchangeFailed, authErr.Code)
	assert.Contains(t, authErr.Message, "code expired")
}

func TestCompleteOAuth(t *testing.T) {
	auth, store := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-99"})
	})

	params := map[string]string{
		"code":      "auth-code",
		"timestamp": "1700000000",
		"store":     "demo.mysapo.net",
	}
	sig := signParams(testSecret, params)
	callback := fmt.Sprintf(
		"https://app.example.com/callback?code=%s&timestamp=%s&store=%s&hmac=%s",
		params["code"], params["timestamp"], params["store"], url.QueryEscape(sig),
	)

	token, err := auth.CompleteOAuth(context.Background(), store, callback)
	require.NoError(t, err)
	assert.Equal(t, "tok-99", token.AccessToken)
}

func TestCompleteOAuth_InvalidHMAC(t *testing.T) {
	auth, store := tokenServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("token exchange must not run for a forged callback")
	})

	callback := "https://app.example.com/callback?code=abc&timestamp=1700000000&hmac=forged"

	_, err := auth.CompleteOAuth(context.Background(), store, callback)

	var authErr *AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, CodeInvalidHMAC, authErr.Code)
}

func TestVerifyWebhook(t *testing.T) {
	auth := NewAuth(DirectCredentials(testKey, testSecret))

	body := []byte(`{"id":123,"topic":"orders/create"}`)
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.True(t, auth.VerifyWebhook(body, sig))
	assert.False(t, auth.VerifyWebhook([]byte(`tampered`), sig))
}
