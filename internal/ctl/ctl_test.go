package ctl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cafe-delivery-service/internal/apperr"
	"cafe-delivery-service/internal/config"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/gateway/backend"
	"cafe-delivery-service/internal/logx"
	"cafe-delivery-service/internal/store"
)

type fakeAPI struct {
	lastQuery  domain.ListQuery
	page       store.Page
	details    *domain.DeliveryDetails
	getErr     error
	updateErr  error
	statusReqs []domain.Status
	timeReqs   []domain.TimeUpdate
}

func (f *fakeAPI) List(_ context.Context, q domain.ListQuery) (store.Page, error) {
	f.lastQuery = q
	return f.page, nil
}

func (f *fakeAPI) Get(context.Context, int64) (*domain.DeliveryDetails, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	d := *f.details
	return &d, nil
}

func (f *fakeAPI) UpdateStatus(_ context.Context, _ int64, st domain.Status) (domain.Delivery, error) {
	f.statusReqs = append(f.statusReqs, st)
	if f.updateErr != nil {
		return domain.Delivery{}, f.updateErr
	}
	d := f.details.Delivery
	d.Status = st
	return d, nil
}

func (f *fakeAPI) UpdateTime(_ context.Context, _ int64, u domain.TimeUpdate) (domain.Delivery, error) {
	f.timeReqs = append(f.timeReqs, u)
	if f.updateErr != nil {
		return domain.Delivery{}, f.updateErr
	}
	t, err := domain.ParseTime(u.NewTime)
	if err != nil {
		return domain.Delivery{}, err
	}
	d := f.details.Delivery
	d.EstimatedDeliveryTime = &t
	return d, nil
}

var created = time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)

func sampleDetails(st domain.Status) *domain.DeliveryDetails {
	emp := int64(7)
	return &domain.DeliveryDetails{
		Delivery: domain.Delivery{
			ID:              12,
			OrderID:         "order-12",
			EmployeeID:      &emp,
			Status:          st,
			DeliveryAddress: "1 Main St",
			PhoneNumber:     "+15550100",
			DeliveryFee:     350,
			CreatedAt:       created,
			UpdatedAt:       created,
		},
		Order:    &domain.OrderSummary{ID: "order-12", CustomerName: "Ann", Total: 2599},
		Employee: &domain.EmployeeSummary{ID: 7, Name: "Bob", Phone: "+1"},
	}
}

type harness struct {
	cli    *CLI
	api    *fakeAPI
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	gotCfg config.Backend
}

func newHarness(api *fakeAPI) *harness {
	h := &harness{api: api, stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	h.cli = New(h.stdout, h.stderr)
	h.cli.loadConfig = func() (*config.Config, error) {
		return &config.Config{Backend: config.DefaultBackend()}, nil
	}
	h.cli.newAPI = func(cfg config.Backend, _ logx.Logger) (API, error) {
		h.gotCfg = cfg
		return api, nil
	}
	return h
}

func (h *harness) run(args ...string) int {
	return h.cli.Run(context.Background(), args)
}

func TestRun_GlobalFlagsReachClient(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeAPI{details: sampleDetails(domain.StatusPending)})
	require.Equal(t, 0, h.run("--url", "http://api:9000", "--timeout", "2s", "show", "12"))
	require.Equal(t, "http://api:9000", h.gotCfg.URL)
	require.Equal(t, 2*time.Second, h.gotCfg.Timeout)
	require.Equal(t, config.DefaultBackend().MaxAttempts, h.gotCfg.MaxAttempts)
}

func TestRun_UsageErrors(t *testing.T) {
	t.Parallel()

	cases := [][]string{
		{},
		{"nope"},
		{"show"},
		{"show", "abc"},
		{"status", "12"},
		{"status", "12", "flying"},
		{"list", "--status", "flying"},
		{"list", "--from", "yesterday"},
		{"time", "12", "--type", "later", "--at", "2025-01-02T10:00"},
		{"time", "--type", "estimated"},
	}
	for _, args := range cases {
		h := newHarness(&fakeAPI{details: sampleDetails(domain.StatusPending)})
		require.Equal(t, 2, h.run(args...), "%v", args)
		require.Contains(t, h.stderr.String(), "usage: deliveryctl", "%v", args)
	}
}

func TestList_BuildsQueryAndPrintsTable(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{page: store.Page{
		Items:      []domain.Delivery{sampleDetails(domain.StatusPreparing).Delivery},
		Page:       1,
		PageSize:   20,
		Total:      1,
		TotalPages: 1,
	}}
	h := newHarness(api)

	code := h.run("list", "--status", "Preparing", "--from", "2025-01-01", "--to", "2025-01-31",
		"--employee", "7", "--search", "main", "--sort", "created_at", "--order", "DESC", "--page", "1", "--page-size", "20")
	require.Equal(t, 0, code, h.stderr.String())

	q := api.lastQuery
	require.NotNil(t, q.Status)
	require.Equal(t, domain.StatusPreparing, *q.Status)
	require.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *q.From)
	require.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond), *q.To)
	require.Equal(t, int64(7), *q.EmployeeID)
	require.Equal(t, "main", q.Search)
	require.Equal(t, domain.SortDesc, q.SortOrder)
	require.Equal(t, 20, q.PageSize)

	out := h.stdout.String()
	assert.Contains(t, out, "ORDER")
	assert.Contains(t, out, "order-12")
	assert.Contains(t, out, "3.50")
	assert.Contains(t, out, "page 1/1, 1 total")
}

func TestList_WithoutEmployeeFlagLeavesFilterUnset(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{}
	h := newHarness(api)
	require.Equal(t, 0, h.run("list"))
	require.Nil(t, api.lastQuery.EmployeeID)
	require.Nil(t, api.lastQuery.Status)
}

func TestShow_PrintsDetails(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeAPI{details: sampleDetails(domain.StatusOutForDelivery)})
	require.Equal(t, 0, h.run("show", "12"))

	out := h.stdout.String()
	assert.Contains(t, out, "out_for_delivery")
	assert.Contains(t, out, "Ann")
	assert.Contains(t, out, "25.99")
	assert.Contains(t, out, "Bob (+1)")
}

func TestShow_JSON(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeAPI{details: sampleDetails(domain.StatusPending)})
	require.Equal(t, 0, h.run("--json", "show", "12"))

	var got map[string]any
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &got))
	require.Equal(t, "order-12", got["orderId"])
	require.Equal(t, "pending", got["status"])
	order, ok := got["order"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Ann", order["customerName"])
}

func TestShow_NotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeAPI{getErr: &backend.NetworkError{Op: "Get", StatusCode: 404, Err: apperr.ErrNotFound}})
	require.Equal(t, 1, h.run("show", "12"))
	require.Contains(t, h.stderr.String(), "delivery 12 not found")
}

func TestStatus_ConfirmedByBackend(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{details: sampleDetails(domain.StatusPending)}
	h := newHarness(api)
	require.Equal(t, 0, h.run("status", "12", "preparing"))
	require.Equal(t, []domain.Status{domain.StatusPreparing}, api.statusReqs)
	require.Contains(t, h.stdout.String(), "preparing")
}

func TestStatus_InvalidTransitionNeverReachesBackend(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{details: sampleDetails(domain.StatusDelivered)}
	api.details.ActualDeliveryTime = &created
	h := newHarness(api)

	require.Equal(t, 1, h.run("status", "12", "pending"))
	require.Empty(t, api.statusReqs)
	require.Contains(t, h.stderr.String(), "invalid status transition delivered -> pending")
}

func TestStatus_BackendRejectionIsReported(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{
		details:   sampleDetails(domain.StatusPending),
		updateErr: &backend.NetworkError{Op: "UpdateStatus", StatusCode: 409, Message: "conflict", Err: apperr.ErrConflict},
	}
	h := newHarness(api)

	require.Equal(t, 1, h.run("status", "12", "preparing"))
	require.Len(t, api.statusReqs, 1)
	require.Contains(t, h.stderr.String(), "status update of delivery 12")
	require.Contains(t, h.stderr.String(), "conflict")
}

func TestTime_SendsUpdate(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{details: sampleDetails(domain.StatusPreparing)}
	h := newHarness(api)

	code := h.run("time", "12", "--type", "estimated", "--at", "2025-01-02T15:04",
		"--reason", "traffic", "--notify", "--message", "running late", "--employee", "9")
	require.Equal(t, 0, code, h.stderr.String())
	require.Len(t, api.timeReqs, 1)

	u := api.timeReqs[0]
	require.Equal(t, domain.TimeEstimated, u.Field)
	require.Equal(t, "2025-01-02T15:04", u.NewTime)
	require.Equal(t, "traffic", u.Reason)
	require.True(t, u.NotifyCustomer)
	require.Equal(t, "running late", u.NotificationMessage)
	require.Equal(t, int64(9), *u.EmployeeID)
	require.Contains(t, h.stdout.String(), "2025-01-02 15:04")
}

func TestTime_LocalValidationFailsFast(t *testing.T) {
	t.Parallel()

	api := &fakeAPI{details: sampleDetails(domain.StatusPreparing)}
	h := newHarness(api)

	require.Equal(t, 1, h.run("time", "12", "--type", "estimated", "--at", "2024-12-31T10:00"))
	require.Empty(t, api.timeReqs)
	require.Contains(t, h.stderr.String(), "precedes delivery creation")
}

func TestRun_ConfigErrorExitsOne(t *testing.T) {
	t.Parallel()

	h := newHarness(&fakeAPI{})
	h.cli.loadConfig = func() (*config.Config, error) { return nil, errors.New("bad env") }
	require.Equal(t, 1, h.run("list"))
	require.Contains(t, h.stderr.String(), "load config: bad env")
}

func TestFormatFee(t *testing.T) {
	t.Parallel()

	require.Equal(t, "0.00", formatFee(0))
	require.Equal(t, "3.05", formatFee(305))
	require.Equal(t, "-1.50", formatFee(-150))
}
