// Package recordstore talks to the remote user collection over plain REST:
//
//	GET    /<collection>       list
//	GET    /<collection>/<id>  get
//	POST   /<collection>       create (body: draft, no id)
//	PUT    /<collection>/<id>  update (body: draft)
//	DELETE /<collection>/<id>  delete
//
// Any non-2xx response is reported as ErrStore.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"partners-cli/internal/model"

	"github.com/google/uuid"
)

const (
	OpList   = "list"
	OpGet    = "get"
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

const (
	DefaultEndpoint   = "http://localhost:3001"
	DefaultCollection = "users"
	DefaultTimeout    = 10 * time.Second

	// Responses larger than this are treated as a failed call.
	maxResponseBytes = 8 << 20
)

// Config configures a Client.
type Config struct {
	Endpoint   string
	Collection string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client issues record store requests. It is safe for concurrent use.
type Client struct {
	base    *url.URL
	coll    string
	timeout time.Duration
	http    *http.Client
}

func New(cfg Config) (*Client, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New("recordstore: endpoint must be an http(s) url")
	}
	if u.Host == "" {
		return nil, errors.New("recordstore: endpoint has no host")
	}

	coll := strings.Trim(strings.TrimSpace(cfg.Collection), "/")
	if coll == "" {
		coll = DefaultCollection
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{base: u, coll: coll, timeout: timeout, http: hc}, nil
}

// CollectionURL is the list/create URL.
func (c *Client) CollectionURL() string {
	return c.base.JoinPath(c.coll).String()
}

func (c *Client) recordURL(id string) string {
	return c.base.JoinPath(c.coll, url.PathEscape(id)).String()
}

var errEmptyID = errors.New("empty record id")

// List returns every record in the collection.
func (c *Client) List(ctx context.Context) ([]model.Record, error) {
	var out []model.Record
	if err := c.do(ctx, OpList, http.MethodGet, c.CollectionURL(), nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Record{}
	}
	for i := range out {
		if out[i].Countries == nil {
			out[i].Countries = []string{}
		}
	}
	return out, nil
}

// Get returns a single record.
func (c *Client) Get(ctx context.Context, id string) (model.Record, error) {
	if strings.TrimSpace(id) == "" {
		return model.Record{}, &Error{Op: OpGet, Err: errEmptyID}
	}
	var out model.Record
	if err := c.do(ctx, OpGet, http.MethodGet, c.recordURL(id), nil, &out); err != nil {
		return model.Record{}, err
	}
	if out.Countries == nil {
		out.Countries = []string{}
	}
	return out, nil
}

// Create posts d and returns the record with the id the store assigned.
func (c *Client) Create(ctx context.Context, d model.Draft) (model.Record, error) {
	var out model.Record
	if err := c.do(ctx, OpCreate, http.MethodPost, c.CollectionURL(), d, &out); err != nil {
		return model.Record{}, err
	}
	return out, nil
}

// Update replaces the editable fields of record id.
func (c *Client) Update(ctx context.Context, id string, d model.Draft) (model.Record, error) {
	if strings.TrimSpace(id) == "" {
		return model.Record{}, &Error{Op: OpUpdate, Err: errEmptyID}
	}
	var out model.Record
	if err := c.do(ctx, OpUpdate, http.MethodPut, c.recordURL(id), d, &out); err != nil {
		return model.Record{}, err
	}
	return out, nil
}

// Delete removes record id.
func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &Error{Op: OpDelete, Err: errEmptyID}
	}
	return c.do(ctx, OpDelete, http.MethodDelete, c.recordURL(id), nil, nil)
}

func (c *Client) do(ctx context.Context, op, method, target string, body any, out any) error {
	reqID := uuid.NewString()
	fail := func(status int, err error) error {
		return &Error{Op: op, StatusCode: status, RequestID: reqID, Err: err}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fail(0, err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return fail(0, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return fail(resp.StatusCode, nil)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil
	}

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return fail(resp.StatusCode, err)
	}
	if len(b) > maxResponseBytes {
		return fail(resp.StatusCode, errors.New("response too large"))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fail(resp.StatusCode, err)
	}
	return nil
}
