// Package client is the HTTP client for the storefront API: catalog reads,
// auth, and purchase submission on behalf of the checkout flow.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/calleja/devgear/internal/checkout"
	"github.com/calleja/devgear/internal/domain"
	"github.com/calleja/devgear/internal/session"
)

// DefaultTimeout bounds every call; expiry surfaces as a normal fetch error.
const DefaultTimeout = 10 * time.Second

type Client struct {
	base  string
	http  *http.Client
	token func() (string, bool)
}

func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTokenSource wires the session store in as the bearer-token provider.
func (c *Client) SetTokenSource(fn func() (string, bool)) { c.token = fn }

func (c *Client) SaleProducts(ctx context.Context) ([]domain.SaleProduct, error) {
	var list []domain.SaleProduct
	if err := c.get(ctx, "/api/sale", &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (c *Client) ShopProducts(ctx context.Context) ([]domain.Product, error) {
	var list []domain.Product
	if err := c.get(ctx, "/api/shop", &list); err != nil {
		return nil, err
	}
	return list, nil
}

type loginResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

func (c *Client) Login(ctx context.Context, username, password string) (string, session.User, error) {
	var resp loginResponse
	body := map[string]string{"username": username, "password": password}
	if err := c.post(ctx, "/api/auth/login", body, &resp); err != nil {
		return "", session.User{}, err
	}
	return resp.Token, resp.User, nil
}

func (c *Client) Register(ctx context.Context, username, password string) error {
	body := map[string]string{"username": username, "password": password}
	return c.post(ctx, "/api/auth/register", body, nil)
}

type purchaseResponse struct {
	Purchase struct {
		ID int `json:"id"`
	} `json:"purchase"`
}

// SubmitPurchase implements checkout.Submitter.
func (c *Client) SubmitPurchase(ctx context.Context, req checkout.PurchaseRequest) (int, error) {
	var resp purchaseResponse
	if err := c.post(ctx, "/api/purchase", req, &resp); err != nil {
		return 0, err
	}
	return resp.Purchase.ID, nil
}

type purchaseHistory struct {
	Purchases []domain.Purchase `json:"purchases"`
}

func (c *Client) Purchases(ctx context.Context) ([]domain.Purchase, error) {
	var resp purchaseHistory
	if err := c.get(ctx, "/api/purchase", &resp); err != nil {
		return nil, err
	}
	return resp.Purchases, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	if c.token != nil {
		if tok, ok := c.token(); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return errors.New(apiErrorMessage(resp.StatusCode, data))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

// apiErrorMessage extracts the server's error text so the UI can surface it
// verbatim.
func apiErrorMessage(status int, body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Error != "" {
		return payload.Error
	}
	return fmt.Sprintf("request failed with status %d", status)
}
