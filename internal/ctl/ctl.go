// Package ctl implements deliveryctl, the back-office command line client of
// the delivery API. Status and time changes go through a store.Tracker so a
// change the lifecycle forbids is rejected before any request is sent.
package ctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"cafe-delivery-service/internal/config"
	"cafe-delivery-service/internal/domain"
	"cafe-delivery-service/internal/gateway/backend"
	"cafe-delivery-service/internal/logx"
	"cafe-delivery-service/internal/metrics"
	"cafe-delivery-service/internal/store"
)

// API is the delivery REST surface the commands drive.
type API interface {
	store.Backend
	List(ctx context.Context, q domain.ListQuery) (store.Page, error)
	Get(ctx context.Context, id int64) (*domain.DeliveryDetails, error)
}

var errUsage = errors.New("usage")

const usageText = `usage: deliveryctl [--url URL] [--timeout D] [--json] [-v] <command> [args]

commands:
  list   [--status S] [--from DATE] [--to DATE] [--employee ID] [--search TERM]
         [--sort FIELD] [--order asc|desc] [--page N] [--page-size N]
  show   <id>
  status <id> <pending|preparing|out_for_delivery|delivered|cancelled>
  time   <id> --type estimated|actual --at TIME [--reason R] [--notify]
         [--message M] [--employee ID]
`

// CLI runs deliveryctl commands.
type CLI struct {
	stdout     io.Writer
	stderr     io.Writer
	loadConfig func() (*config.Config, error)
	newAPI     func(cfg config.Backend, logger logx.Logger) (API, error)
}

// New returns a CLI printing to stdout and reporting to stderr.
func New(stdout, stderr io.Writer) *CLI {
	return &CLI{
		stdout:     stdout,
		stderr:     stderr,
		loadConfig: config.FromEnv,
		newAPI:     newRetryingAPI,
	}
}

func newRetryingAPI(cfg config.Backend, logger logx.Logger) (API, error) {
	client, err := backend.NewClient(cfg.URL, cfg.Timeout, nil)
	if err != nil {
		return nil, err
	}
	return backend.NewRetryingClient(client, logger, metrics.NewGatewayRetriesTotal(), backend.RetryConfig{
		MaxAttempts: cfg.MaxAttempts,
		BaseDelay:   cfg.BaseDelay,
		MaxDelay:    cfg.MaxDelay,
	}), nil
}

// Run executes args and returns the process exit code.
func (c *CLI) Run(ctx context.Context, args []string) int {
	err := c.run(ctx, args)
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(c.stderr, "deliveryctl: %v\n\n%s", err, usageText)
		return 2
	default:
		fmt.Fprintf(c.stderr, "deliveryctl: %v\n", err)
		return 1
	}
}

func (c *CLI) run(ctx context.Context, args []string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs := newFlagSet("deliveryctl", c.stderr)
	fs.SetInterspersed(false)
	url := fs.String("url", cfg.Backend.URL, "delivery API base URL")
	timeout := fs.Duration("timeout", cfg.Backend.Timeout, "per-request timeout")
	asJSON := fs.Bool("json", false, "print JSON instead of text")
	verbose := fs.BoolP("verbose", "v", false, "log retries and rollbacks to stderr")
	if err := fs.Parse(args); err != nil {
		return usageErr(err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return usageErr(errors.New("missing command"))
	}

	level := "error"
	if *verbose {
		level = "debug"
	}
	logger := logx.NewJSON(c.stderr, level, "deliveryctl")

	bcfg := cfg.Backend
	bcfg.URL = *url
	bcfg.Timeout = *timeout
	api, err := c.newAPI(bcfg, logger)
	if err != nil {
		return err
	}

	cmd := command{api: api, logger: logger, out: printer{w: c.stdout, json: *asJSON}, stderr: c.stderr}
	switch rest[0] {
	case "list":
		return cmd.list(ctx, rest[1:])
	case "show":
		return cmd.show(ctx, rest[1:])
	case "status":
		return cmd.status(ctx, rest[1:])
	case "time":
		return cmd.time(ctx, rest[1:])
	default:
		return usageErr(fmt.Errorf("unknown command %q", rest[0]))
	}
}

type command struct {
	api    API
	logger logx.Logger
	out    printer
	stderr io.Writer
}

func (c command) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list", c.stderr)
	status := fs.String("status", "", "status filter")
	from := fs.String("from", "", "created on or after (YYYY-MM-DD or RFC3339)")
	to := fs.String("to", "", "created on or before (YYYY-MM-DD or RFC3339)")
	employee := fs.Int64("employee", 0, "assigned driver id")
	search := fs.String("search", "", "case-insensitive search term")
	sortField := fs.String("sort", "", "sort field")
	order := fs.String("order", "", "asc or desc")
	page := fs.Int("page", 0, "1-based page")
	pageSize := fs.Int("page-size", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return usageErr(err)
	}

	q := domain.ListQuery{
		Search:    *search,
		SortField: *sortField,
		SortOrder: domain.SortOrder(strings.ToLower(*order)),
		Page:      *page,
		PageSize:  *pageSize,
	}
	if *status != "" {
		st, ok := domain.ParseStatus(*status)
		if !ok {
			return usageErr(fmt.Errorf("invalid status %q", *status))
		}
		q.Status = &st
	}
	if *from != "" {
		t, err := parseDate(*from, false)
		if err != nil {
			return usageErr(fmt.Errorf("invalid --from: %w", err))
		}
		q.From = &t
	}
	if *to != "" {
		t, err := parseDate(*to, true)
		if err != nil {
			return usageErr(fmt.Errorf("invalid --to: %w", err))
		}
		q.To = &t
	}
	if fs.Changed("employee") {
		q.EmployeeID = employee
	}

	p, err := c.api.List(ctx, q)
	if err != nil {
		return err
	}
	return c.out.page(p)
}

func (c command) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usageErr(errors.New("show takes exactly one id"))
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	d, err := c.api.Get(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return fmt.Errorf("delivery %d not found", id)
		}
		return err
	}
	return c.out.details(d)
}

func (c command) status(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usageErr(errors.New("status takes an id and a status"))
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	st, ok := domain.ParseStatus(args[1])
	if !ok {
		return usageErr(fmt.Errorf("invalid status %q", args[1]))
	}

	tr, err := c.track(ctx, id)
	if err != nil {
		return err
	}
	d, err := tr.ChangeStatus(ctx, id, st)
	if err != nil {
		return err
	}
	return c.out.delivery(d)
}

func (c command) time(ctx context.Context, args []string) error {
	fs := newFlagSet("time", c.stderr)
	field := fs.String("type", "", "estimated or actual")
	at := fs.String("at", "", "new time (RFC3339 or 2006-01-02T15:04)")
	reason := fs.String("reason", "", "reason for the change")
	notifyCustomer := fs.Bool("notify", false, "notify the customer")
	message := fs.String("message", "", "customer notification text")
	employee := fs.Int64("employee", 0, "reassign to driver id")
	if err := fs.Parse(args); err != nil {
		return usageErr(err)
	}
	if fs.NArg() != 1 {
		return usageErr(errors.New("time takes exactly one id"))
	}
	id, err := parseID(fs.Arg(0))
	if err != nil {
		return err
	}
	u := domain.TimeUpdate{
		Field:               domain.TimeField(strings.ToLower(*field)),
		NewTime:             *at,
		Reason:              *reason,
		NotifyCustomer:      *notifyCustomer,
		NotificationMessage: *message,
	}
	if !u.Field.Valid() {
		return usageErr(fmt.Errorf("invalid --type %q", *field))
	}
	if fs.Changed("employee") {
		u.EmployeeID = employee
	}

	tr, err := c.track(ctx, id)
	if err != nil {
		return err
	}
	d, err := tr.ChangeTime(ctx, id, u)
	if err != nil {
		return err
	}
	return c.out.delivery(d)
}

// track loads the current record and wraps it in a Tracker.
func (c command) track(ctx context.Context, id int64) (*store.Tracker, error) {
	cur, err := c.api.Get(ctx, id)
	if err != nil {
		if backend.IsNotFound(err) {
			return nil, fmt.Errorf("delivery %d not found", id)
		}
		return nil, err
	}
	return store.NewTracker(store.New([]domain.Delivery{cur.Delivery}), c.api, c.logger), nil
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func usageErr(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return errUsage
	}
	return fmt.Errorf("%w: %v", errUsage, err)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, usageErr(fmt.Errorf("invalid id %q", s))
	}
	return id, nil
}

// parseDate accepts a bare date or a full timestamp. A bare upper bound
// covers the whole day.
func parseDate(s string, endOfDay bool) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, strings.TrimSpace(s)); err == nil {
		if endOfDay {
			return d.Add(24*time.Hour - time.Nanosecond), nil
		}
		return d, nil
	}
	return domain.ParseTime(s)
}
