package sapo

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

type credentialMode int

const (
	credentialNone credentialMode = iota
	credentialDirect
	credentialOAuth
)

// Credentials selects one of the two authentication modes. Exactly one
// variant is active per client: direct key/secret pairing (private apps,
// basic auth) or the OAuth flow (public apps, access-token header).
type Credentials struct {
	mode        credentialMode
	apiKey      string
	apiSecret   string
	redirectURI string
}

// DirectCredentials configures basic-auth pairing for a private app. The
// key/secret pair is sent on every request; there is no token exchange.
func DirectCredentials(apiKey, apiSecret string) Credentials {
	return Credentials{mode: credentialDirect, apiKey: apiKey, apiSecret: apiSecret}
}

// OAuthCredentials configures the OAuth flow for a public app. Requests are
// unauthenticated until an access token is obtained via CompleteOAuth or
// SetAccessToken; the platform rejects them server-side.
func OAuthCredentials(apiKey, apiSecret, redirectURI string) Credentials {
	return Credentials{mode: credentialOAuth, apiKey: apiKey, apiSecret: apiSecret, redirectURI: redirectURI}
}

func (c Credentials) validate() error {
	switch c.mode {
	case credentialDirect:
		if c.apiKey == "" || c.apiSecret == "" {
			return fmt.Errorf("sapo: direct credentials require an api key and secret")
		}
	case credentialOAuth:
		if c.apiKey == "" || c.apiSecret == "" || c.redirectURI == "" {
			return fmt.Errorf("sapo: oauth credentials require an api key, secret, and redirect uri")
		}
	default:
		return fmt.Errorf("sapo: credentials are required")
	}
	return nil
}

// Token is the payload of a successful OAuth token exchange. Sapo issues
// non-expiring tokens; nothing here tracks expiry.
type Token struct {
	AccessToken string `json:"access_token"`
}

// CallbackParams are the query parameters Sapo appends to the OAuth
// callback redirect.
type CallbackParams struct {
	Code      string
	HMAC      string
	Timestamp string
}

// Auth builds authorization URLs, exchanges codes for tokens, and verifies
// HMAC signatures on callbacks and webhooks.
type Auth struct {
	creds      Credentials
	httpClient *http.Client
}

// NewAuth creates an Auth for the given credentials.
func NewAuth(creds Credentials) *Auth {
	return &Auth{creds: creds, httpClient: http.DefaultClient}
}

// AuthorizeURL returns the URL to redirect a merchant to for consent.
// Scope order is preserved as given.
func (a *Auth) AuthorizeURL(store string, scopes []Scope) string {
	joined := make([]string, len(scopes))
	for i, s := range scopes {
		joined[i] = string(s)
	}

	query := url.Values{}
	query.Set("client_id", a.creds.apiKey)
	query.Set("scope", strings.Join(joined, ","))
	query.Set("redirect_uri", a.creds.redirectURI)

	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", store, query.Encode())
}

// ExchangeCode trades an authorization code for an access token. This is a
// pre-authentication bootstrap step and is not subject to the rate limiter.
func (a *Auth) ExchangeCode(ctx context.Context, store, code string) (Token, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     a.creds.apiKey,
		"client_secret": a.creds.apiSecret,
		"code":          code,
	})
	if err != nil {
		return Token{}, fmt.Errorf("sapo: marshal token request: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s/admin/oauth/access_token", store)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return Token{}, fmt.Errorf("sapo: create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return Token{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body errorBody
		if err := json.Unmarshal(raw, &body); err != nil {
			body = errorBody{Code: "UNKNOWN_ERROR", Message: strings.TrimSpace(string(raw))}
		}
		classified := classify(resp.StatusCode, body, resp.Header)
		return Token{}, &AuthenticationError{APIError{
			Status:  resp.StatusCode,
			Code:    CodeTokenExchangeFailed,
			Message: classified.Error(),
		}}
	}

	var token Token
	if err := json.Unmarshal(raw, &token); err != nil {
		return Token{}, fmt.Errorf("sapo: decode token response: %w", err)
	}
	return token, nil
}

// VerifyHMAC reports whether sig matches the HMAC-SHA256 of the query
// parameters under the configured secret. The hmac key is removed from the
// set, remaining keys are sorted, joined as key=value pairs with &, and the
// digest is base64-encoded before a constant-time comparison. A mismatch is
// a false return, never an error.
func (a *Auth) VerifyHMAC(query map[string]string, sig string) bool {
	keys := make([]string, 0, len(query))
	for k := range query {
		if k == "hmac" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = k + "=" + query[k]
	}
	message := strings.Join(pairs, "&")

	mac := hmac.New(sha256.New, []byte(a.creds.apiSecret))
	mac.Write([]byte(message))
	computed := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(computed), []byte(sig)) == 1
}

// ParseCallback extracts the code, hmac, and timestamp parameters from an
// OAuth callback URL. All three are required.
func (a *Auth) ParseCallback(rawURL string) (CallbackParams, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return CallbackParams{}, authError(CodeInvalidCallbackParams, "invalid callback URL: "+err.Error())
	}

	q := u.Query()
	params := CallbackParams{
		Code:      q.Get("code"),
		HMAC:      q.Get("hmac"),
		Timestamp: q.Get("timestamp"),
	}
	if params.Code == "" || params.HMAC == "" || params.Timestamp == "" {
		return CallbackParams{}, authError(CodeInvalidCallbackParams, "invalid callback URL: missing required parameters")
	}
	return params, nil
}

// CompleteOAuth runs the full callback sequence: parse the callback URL,
// verify its signature, and exchange the code for a token. A malformed or
// fraudulent callback is a terminal failure; nothing is retried.
//
// The signature is verified over every callback query parameter except hmac
// itself, so extra parameters the platform includes in its signing scheme
// (shop, timestamp variants) are covered automatically.
func (a *Auth) CompleteOAuth(ctx context.Context, store, callbackURL string) (Token, error) {
	params, err := a.ParseCallback(callbackURL)
	if err != nil {
		return Token{}, err
	}

	u, _ := url.Parse(callbackURL)
	signed := make(map[string]string)
	for k, v := range u.Query() {
		if len(v) > 0 {
			signed[k] = v[0]
		}
	}

	if !a.VerifyHMAC(signed, params.HMAC) {
		return Token{}, authError(CodeInvalidHMAC, "invalid HMAC signature")
	}

	return a.ExchangeCode(ctx, store, params.Code)
}

// VerifyWebhook reports whether sig matches the HMAC-SHA256 of a raw
// webhook body under the configured secret.
func (a *Auth) VerifyWebhook(body []byte, sig string) bool {
	mac := hmac.New(sha256.New, []byte(a.creds.apiSecret))
	mac.Write(body)
	computed := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(computed), []byte(sig)) == 1
}
