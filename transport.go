package sapo

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// session is the live request configuration read by the transport on every
// dispatch: store host, credentials, timeout, and default headers. The
// client owns it; mutators must not race in-flight requests.
type session struct {
	host           string
	creds          Credentials
	accessToken    string
	timeout        time.Duration
	defaultHeaders map[string]string
}

// authHeader returns the single authentication header for the session: the
// access-token header once a token is set, basic auth for direct
// credentials, nothing otherwise (the platform rejects it server-side).
func (s session) authHeader() (name, value string, ok bool) {
	if s.accessToken != "" {
		return "X-Sapo-Access-Token", s.accessToken, true
	}
	if s.creds.mode == credentialDirect {
		pair := s.creds.apiKey + ":" + s.creds.apiSecret
		return "Authorization", "Basic " + base64.StdEncoding.EncodeToString([]byte(pair)), true
	}
	return "", "", false
}

// RequestOptions are per-call overrides for a single dispatch.
type RequestOptions struct {
	// Headers are merged over the session defaults; per-call wins.
	Headers map[string]string

	// Timeout overrides the session timeout when positive.
	Timeout time.Duration
}

// apiResponse is the raw outcome of a successful (2xx) dispatch.
type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

// transport executes one HTTP call: URL join, header merge, JSON body,
// deadline, and uniform success/failure shaping. It never unwraps platform
// envelope keys; that is the resource layer's job.
type transport struct {
	httpClient *http.Client
}

func (t *transport) do(ctx context.Context, sess session, method, path string, query url.Values, body any, opts *RequestOptions) (*apiResponse, error) {
	endpoint := buildURL(sess.host, path)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("sapo: marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	timeout := sess.timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if opts != nil && opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("sapo: create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	for k, v := range sess.defaultHeaders {
		req.Header.Set(k, v)
	}
	if name, value, ok := sess.authHeader(); ok {
		req.Header.Set(name, value)
	}
	if opts != nil {
		for k, v := range opts.Headers {
			req.Header.Set(k, v)
		}
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		// No response exists: deadline, DNS, TCP, TLS. Never classified.
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody errorBody
		if err := json.Unmarshal(raw, &errBody); err != nil || (errBody.Code == "" && errBody.Message == "") {
			errBody = errorBody{Code: "UNKNOWN_ERROR", Message: strings.TrimSpace(string(raw))}
		}
		return nil, classify(resp.StatusCode, errBody, resp.Header)
	}

	return &apiResponse{status: resp.StatusCode, header: resp.Header, body: raw}, nil
}

// buildURL joins the configured store host and a request path: scheme and
// trailing slash stripped from the host, leading slash stripped from the
// path, always https.
func buildURL(host, path string) string {
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	host = strings.TrimSuffix(host, "/")
	return "https://" + host + "/" + strings.TrimPrefix(path, "/")
}
