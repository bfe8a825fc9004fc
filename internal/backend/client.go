// Package backend talks to the legacy json-server REST backend and converts
// its documents into model entities.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "abantech/internal/errors"
)

// Collection names one resource of the backend.
type Collection string

const (
	Users    Collection = "users"
	Shops    Collection = "shops"
	Revenues Collection = "revenues"
	Expenses Collection = "expenses"
)

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 15 * time.Second

// Client is a json-server style REST client. Requests are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL. A nil httpClient gets one with
// DefaultTimeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// List decodes every document of coll matching query into dst.
func (c *Client) List(ctx context.Context, coll Collection, query url.Values, dst any) error {
	path := "/" + string(coll)
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.do(ctx, http.MethodGet, path, nil, dst)
}

// Create posts doc to coll and decodes the stored document into dst, which may be nil.
func (c *Client) Create(ctx context.Context, coll Collection, doc any, dst any) error {
	return c.do(ctx, http.MethodPost, "/"+string(coll), doc, dst)
}

// Patch changes fields of the document id and decodes the result into dst,
// which may be nil.
func (c *Client) Patch(ctx context.Context, coll Collection, id string, fields any, dst any) error {
	return c.do(ctx, http.MethodPatch, "/"+string(coll)+"/"+url.PathEscape(id), fields, dst)
}

// Snapshot fetches all four collections concurrently. If any request fails
// the whole snapshot fails and no partial data is returned.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.List(ctx, Users, nil, &snap.Users) })
	g.Go(func() error { return c.List(ctx, Shops, nil, &snap.Shops) })
	g.Go(func() error { return c.List(ctx, Revenues, nil, &snap.Revenues) })
	g.Go(func() error { return c.List(ctx, Expenses, nil, &snap.Expenses) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, dst any) error {
	target := c.baseURL + path

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return &apperrors.NetworkError{Op: method, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &apperrors.NetworkError{Op: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return &apperrors.NetworkError{Op: method, URL: target, StatusCode: resp.StatusCode}
	}

	if dst == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return &apperrors.NetworkError{Op: method, URL: target, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
