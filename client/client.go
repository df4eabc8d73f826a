/*
Package client provides HTTP access to the operations backend.

PURPOSE:
  Thin wrapper over net/http for the REST contract the resource stores
  consume: paginated list endpoints, single-item endpoints, resource
  creation, and the bulk pricing endpoint. Decodes structured error
  bodies into generic.APIError so forms can bind field errors.

WIRE CONTRACT:
  GET  /<resource>?<filters>&page=N  -> {data: [...], meta: {...}, links: {...}}
  GET  /<resource>/<id>              -> {data: {...}}
  POST /<resource>                   -> {data: {...}} or 422 {message, errors}
  GET  /prices?hotels=[...]          -> {hotels: [{price, no_price_for_dates}]}

AUTH:
  A bearer token held in a TokenStore is attached to every request when
  present. Login stores the token; nothing else in the client knows about
  credentials.

ERROR HANDLING:
  Every non-2xx response becomes *generic.APIError carrying the status
  code, the server's message, and any field errors. Transport failures
  are wrapped with the method and path for context.

SEE ALSO:
  - generic/errors.go: APIError and the dual propagation policy
  - api/: The reference backend implementing this contract
*/
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/voyagehq/quote-engine/generic"
)

// =============================================================================
// TOKEN STORE - local-storage analogue
// =============================================================================

// TokenStore holds the bearer token across requests.
type TokenStore interface {
	Token() string
	SetToken(token string)
	Clear()
}

// MemoryTokenStore keeps the token in memory for the session.
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
}

func NewMemoryTokenStore() *MemoryTokenStore { return &MemoryTokenStore{} }

func (s *MemoryTokenStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryTokenStore) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *MemoryTokenStore) Clear() { s.SetToken("") }

// =============================================================================
// CLIENT
// =============================================================================

type Client struct {
	BaseURL string
	HTTP    *http.Client
	Tokens  TokenStore
}

func New(baseURL string, tokens TokenStore) *Client {
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
		Tokens:  tokens,
	}
}

// Do performs one JSON request. body and out may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &generic.APIError{StatusCode: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(raw, apiErr); err != nil || apiErr.Message == "" {
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}

// =============================================================================
// TYPED HELPERS - used by the per-resource services
// =============================================================================

// List fetches one page of a collection.
func List[T generic.Entity](ctx context.Context, c *Client, path string, query url.Values) (generic.Page[T], error) {
	var page generic.Page[T]
	if err := c.Do(ctx, http.MethodGet, path, query, nil, &page); err != nil {
		return generic.Page[T]{}, err
	}
	return page, nil
}

// Item fetches a single record.
func Item[T generic.Entity](ctx context.Context, c *Client, path string) (T, error) {
	var envelope struct {
		Data T `json:"data"`
	}
	if err := c.Do(ctx, http.MethodGet, path, nil, nil, &envelope); err != nil {
		var zero T
		return zero, err
	}
	return envelope.Data, nil
}

// Create posts a new record and returns the stored representation.
func Create[T generic.Entity](ctx context.Context, c *Client, path string, body any) (T, error) {
	var envelope struct {
		Data T `json:"data"`
	}
	if err := c.Do(ctx, http.MethodPost, path, nil, body, &envelope); err != nil {
		var zero T
		return zero, err
	}
	return envelope.Data, nil
}

// =============================================================================
// AUTH
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginData struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var envelope struct {
		Data loginData `json:"data"`
	}
	err := c.Do(ctx, http.MethodPost, "/login", nil, loginRequest{Email: email, Password: password}, &envelope)
	if err != nil {
		return err
	}
	c.Tokens.SetToken(envelope.Data.Token)
	return nil
}

// Logout drops the stored token.
func (c *Client) Logout() { c.Tokens.Clear() }
