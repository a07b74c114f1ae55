package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/store"
)

const maxErrorBody = 4 << 10

// Client is a typed REST client for the delivery API.
type Client struct {
	base *url.URL
	http *http.Client
}

// NewClient returns a Client for the API rooted at baseURL. A nil httpClient
// gets a default one with the given timeout.
func NewClient(baseURL string, timeout time.Duration, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend: invalid base url %q: %w", baseURL, apperr.ErrInvalid)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{base: u, http: httpClient}, nil
}

// List fetches one page of deliveries matching q.
func (c *Client) List(ctx context.Context, q domain.ListQuery) (store.Page, error) {
	var out pageDTO
	if err := c.do(ctx, "List", http.MethodGet, "/deliveries", encodeQuery(q), nil, &out); err != nil {
		return store.Page{}, err
	}
	return out.toPage(), nil
}

// Get fetches one delivery with its order and employee.
func (c *Client) Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error) {
	var out detailsDTO
	if err := c.do(ctx, "Get", http.MethodGet, deliveryPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	d := out.toDomain()
	return &d, nil
}

// UpdateStatus asks the API to move a delivery to status.
func (c *Client) UpdateStatus(ctx context.Context, id int64, status domain.Status) (domain.Delivery, error) {
	var out deliveryDTO
	body := statusRequest{Status: string(status)}
	if err := c.do(ctx, "UpdateStatus", http.MethodPatch, deliveryPath(id)+"/status", nil, body, &out); err != nil {
		return domain.Delivery{}, err
	}
	return out.toDomain(), nil
}

// UpdateTime asks the API to apply a time update.
func (c *Client) UpdateTime(ctx context.Context, id int64, u domain.TimeUpdate) (domain.Delivery, error) {
	var out deliveryDTO
	if err := c.do(ctx, "UpdateTime", http.MethodPatch, deliveryPath(id)+"/time", nil, timeRequestFrom(u), &out); err != nil {
		return domain.Delivery{}, err
	}
	return out.toDomain(), nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	u := *c.base
	u.Path = c.base.Path + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("backend %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("backend %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
			Err:        statusError(resp.StatusCode),
		}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func readErrorMessage(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil {
		return ""
	}
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}

func deliveryPath(id int64) string {
	return "/deliveries/" + strconv.FormatInt(id, 10)
}

func encodeQuery(q domain.ListQuery) url.Values {
	v := url.Values{}
	if q.Status != nil {
		v.Set("status", string(*q.Status))
	}
	if q.From != nil {
		v.Set("from_date", q.From.Format(time.RFC3339Nano))
	}
	if q.To != nil {
		v.Set("to_date", q.To.Format(time.RFC3339Nano))
	}
	if q.EmployeeID != nil {
		v.Set("employee_id", strconv.FormatInt(*q.EmployeeID, 10))
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	if q.SortField != "" {
		v.Set("sort", q.SortField)
	}
	if q.SortOrder != "" {
		v.Set("order", string(q.SortOrder))
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("page_size", strconv.Itoa(q.PageSize))
	}
	return v
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, apperr.ErrNotFound)
}
