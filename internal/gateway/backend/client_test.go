package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/domain"
)

const deliveryJSON = `{"id":12,"orderId":"order-1","employeeId":7,"status":"preparing",
"deliveryAddress":"1 Main St","phoneNumber":"+15550100","customerNote":"",
"estimatedDeliveryTime":null,"actualDeliveryTime":null,"pickupFromKitchenTime":null,
"deliveryFee":300,"createdAt":"2025-01-02T03:04:05Z","updatedAt":"2025-01-02T03:04:05Z"}`

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(srv.URL+"/", time.Second, nil)
	require.NoError(t, err)
	return c
}

func TestNewClient_RejectsBadURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "localhost:8080", "://nope"} {
		_, err := NewClient(raw, time.Second, nil)
		require.ErrorIs(t, err, apperr.ErrInvalid, raw)
	}
}

func TestClient_List_EncodesQuery(t *testing.T) {
	t.Parallel()

	st := domain.StatusPending
	emp := int64(4)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/deliveries", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "pending", q.Get("status"))
		assert.Equal(t, "2025-01-01T00:00:00Z", q.Get("from_date"))
		assert.Equal(t, "", q.Get("to_date"))
		assert.Equal(t, "4", q.Get("employee_id"))
		assert.Equal(t, "main", q.Get("search"))
		assert.Equal(t, "created_at", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("order"))
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("page_size"))
		_, _ = io.WriteString(w, `{"items":[`+deliveryJSON+`],"page":2,"pageSize":5,"total":6,"totalPages":2}`)
	})

	page, err := c.List(context.Background(), domain.ListQuery{
		Status: &st, From: &from, EmployeeID: &emp, Search: " main ",
		SortField: "created_at", SortOrder: domain.SortDesc, Page: 2, PageSize: 5,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, int64(12), page.Items[0].ID)
	require.Equal(t, domain.StatusPreparing, page.Items[0].Status)
	require.Equal(t, 6, page.Total)
	require.Equal(t, 2, page.TotalPages)
}

func TestClient_Get_DecodesNested(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deliveries/12", r.URL.Path)
		body := deliveryJSON[:len(deliveryJSON)-1] +
			`,"order":{"id":"order-1","customerName":"Ann","total":2500},"employee":{"id":7,"name":"Bob","phone":"+1"}}`
		_, _ = io.WriteString(w, body)
	})

	d, err := c.Get(context.Background(), 12)
	require.NoError(t, err)
	require.Equal(t, "1 Main St", d.DeliveryAddress)
	require.NotNil(t, d.Order)
	require.Equal(t, "Ann", d.Order.CustomerName)
	require.NotNil(t, d.Employee)
	require.Equal(t, "Bob", d.Employee.Name)
	require.Equal(t, int64(7), *d.EmployeeID)
}

func TestClient_UpdateStatus_SendsBody(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/deliveries/12/status", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "preparing", body["status"])
		_, _ = io.WriteString(w, deliveryJSON)
	})

	d, err := c.UpdateStatus(context.Background(), 12, domain.StatusPreparing)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPreparing, d.Status)
}

func TestClient_UpdateTime_SendsBody(t *testing.T) {
	t.Parallel()

	emp := int64(9)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/deliveries/12/time", r.URL.Path)
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "estimated", body["timeType"])
		assert.Equal(t, "2025-01-02T15:04", body["newTime"])
		assert.Equal(t, true, body["notifyCustomer"])
		assert.Equal(t, float64(9), body["employeeId"])
		_, hasReason := body["reason"]
		assert.False(t, hasReason)
		_, _ = io.WriteString(w, deliveryJSON)
	})

	_, err := c.UpdateTime(context.Background(), 12, domain.TimeUpdate{
		Field: domain.TimeEstimated, NewTime: "2025-01-02T15:04", NotifyCustomer: true, EmployeeID: &emp,
	})
	require.NoError(t, err)
}

func TestClient_ErrorResponses(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		code   int
		body   string
		target error
		msg    string
		temp   bool
	}{
		{"not found", http.StatusNotFound, `{"error":"delivery not found"}`, apperr.ErrNotFound, "delivery not found", false},
		{"conflict", http.StatusConflict, `{"error":"invalid transition from delivered to pending"}`, apperr.ErrConflict, "invalid transition from delivered to pending", false},
		{"bad request", http.StatusBadRequest, `{"error":"invalid input"}`, apperr.ErrInvalid, "invalid input", false},
		{"server", http.StatusBadGateway, `upstream down`, apperr.ErrUnavailable, "upstream down", true},
		{"throttled", http.StatusTooManyRequests, `{"error":"too many requests"}`, apperr.ErrUnavailable, "too many requests", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := c.UpdateStatus(context.Background(), 1, domain.StatusPreparing)

			var ne *NetworkError
			require.True(t, errors.As(err, &ne))
			require.Equal(t, "UpdateStatus", ne.Op)
			require.Equal(t, tt.code, ne.StatusCode)
			require.Equal(t, tt.msg, ne.Message)
			require.ErrorIs(t, err, tt.target)
			require.Equal(t, tt.temp, ne.Temporary())
		})
	}
}

func TestClient_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := NewClient(url, time.Second, nil)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), 1)
	var ne *NetworkError
	require.True(t, errors.As(err, &ne))
	require.Zero(t, ne.StatusCode)
	require.True(t, ne.Temporary())
	require.True(t, isRetryable(err))
}

func TestClient_BadJSONIsNotRetryable(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"id":`)
	})
	_, err := c.Get(context.Background(), 1)
	require.Error(t, err)
	require.False(t, isRetryable(err))
}
