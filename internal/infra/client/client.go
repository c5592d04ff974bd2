// Package client is a typed HTTP client for the expense API, used by the
// terminal frontend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/miniledger/easyexp-go/internal/domain"
)

// Session carries the authenticated state. It is cleared automatically
// whenever the server answers 401, so callers can test Authenticated()
// after any request to detect an expired token.
type Session struct {
	Token    string
	UserID   string
	Username string
}

// Authenticated reports whether the session holds a token.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Client talks to one easyexp server. Not safe for concurrent use; the
// terminal frontend is single-threaded.
type Client struct {
	baseURL string
	http    *http.Client
	Session Session
}

// New creates a client for the given base URL, e.g. "http://localhost:8080".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// ListPage mirrors the body of GET /api/expenses.
type ListPage struct {
	Expenses []domain.Expense `json:"expenses"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Limit    int              `json:"limit"`
}

// ============================================================
// Auth
// ============================================================

func (c *Client) Register(ctx context.Context, username, password string) error {
	req := domain.RegisterRequest{Username: username, Password: password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, nil)
}

// Login authenticates and stores the session on success.
func (c *Client) Login(ctx context.Context, username, password string) error {
	req := domain.LoginRequest{Username: username, Password: password}
	var resp domain.LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return err
	}
	c.Session = Session{Token: resp.Token, UserID: resp.UserID, Username: username}
	return nil
}

// Logout tells the server and drops the local session either way.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
	c.Session = Session{}
	return err
}

func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) error {
	req := domain.ChangePasswordRequest{CurrentPassword: current, NewPassword: newPassword}
	return c.do(ctx, http.MethodPost, "/api/auth/change-password", nil, req, nil)
}

// ============================================================
// Expenses
// ============================================================

func (c *Client) ListExpenses(ctx context.Context, f domain.Filter) (*ListPage, error) {
	var page ListPage
	if err := c.do(ctx, http.MethodGet, "/api/expenses", f.Query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreateExpense(ctx context.Context, in *domain.ExpenseInput) (*domain.Expense, error) {
	var e domain.Expense
	if err := c.do(ctx, http.MethodPost, "/api/expenses", nil, in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) GetExpense(ctx context.Context, id string) (*domain.Expense, error) {
	var e domain.Expense
	if err := c.do(ctx, http.MethodGet, "/api/expenses/"+url.PathEscape(id), nil, nil, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) UpdateExpense(ctx context.Context, id string, in *domain.ExpenseInput) (*domain.Expense, error) {
	var e domain.Expense
	if err := c.do(ctx, http.MethodPut, "/api/expenses/"+url.PathEscape(id), nil, in, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/expenses/"+url.PathEscape(id), nil, nil, nil)
}

// ============================================================
// Stats, export, config
// ============================================================

func (c *Client) Stats(ctx context.Context, f domain.Filter) (*domain.StatsResponse, error) {
	var resp domain.StatsResponse
	if err := c.do(ctx, http.MethodGet, "/api/expenses/stats", f.Unpaginated().Query(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Export downloads the spreadsheet for the filtered expense set.
func (c *Client) Export(ctx context.Context, f domain.Filter) ([]byte, error) {
	return c.doRaw(ctx, http.MethodGet, "/api/expenses/export", f.Unpaginated().Query())
}

func (c *Client) GetConfig(ctx context.Context) (*domain.Config, error) {
	var cfg domain.Config
	if err := c.do(ctx, http.MethodGet, "/api/config", nil, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Client) SetConfig(ctx context.Context, kind domain.VocabKind, options []string) (*domain.Config, error) {
	req := struct {
		Type    domain.VocabKind `json:"type"`
		Options []string         `json:"options"`
	}{Type: kind, Options: options}

	var cfg domain.Config
	if err := c.do(ctx, http.MethodPut, "/api/config", nil, req, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ============================================================
// Transport
// ============================================================

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	resp, err := c.send(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, path string, query url.Values) ([]byte, error) {
	resp, err := c.send(ctx, method, path, query, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any) (*http.Response, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Session.Token)
	}

	return c.http.Do(req)
}

// checkStatus drains error responses into an APIError. A 401 clears the
// session so the frontend prompts for a fresh login.
func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.Session = Session{}
	}

	var body struct {
		Error string `json:"error"`
	}
	msg := resp.Status
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{StatusCode: resp.StatusCode, Message: msg}
}
