package tools

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sourcegraph/conc/panics"

	"slack-mcp/internal/config"
	"slack-mcp/internal/logging"
	"slack-mcp/internal/metrics"
	"slack-mcp/internal/slack"
)

// ClientFactory builds the Slack client for one call from the call-time token.
type ClientFactory func(token string) slack.API

// Dispatcher maps a Request onto one tool handler and always yields exactly one Result.
type Dispatcher struct {
	catalog   *Catalog
	creds     config.CredentialSource
	newClient ClientFactory
	metrics   *metrics.Metrics
	log       *slog.Logger
}

type DispatcherOption func(*Dispatcher)

func WithMetrics(m *metrics.Metrics) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithLogger(l *slog.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

func NewDispatcher(catalog *Catalog, creds config.CredentialSource, newClient ClientFactory, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		catalog:   catalog,
		creds:     creds,
		newClient: newClient,
		log:       logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Catalog() *Catalog { return d.catalog }

// Dispatch runs one invocation. Unknown names, missing credentials and missing
// arguments fail before any Slack call; Slack errors and handler panics become
// failure results.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Result {
	start := time.Now()
	ctx = logging.WithTool(ctx, &logging.ToolData{Name: req.Name})

	res := d.dispatch(ctx, req)

	outcome := "ok"
	if res.IsError {
		outcome = "error"
		d.log.WarnContext(ctx, "tool.call.fail", slog.String("err", res.Message), slog.Duration("dur", time.Since(start)))
	} else {
		d.log.InfoContext(ctx, "tool.call.ok", slog.Duration("dur", time.Since(start)))
	}
	if _, known := d.catalog.Lookup(req.Name); known {
		d.metrics.ObserveToolCall(req.Name, outcome, time.Since(start))
	}
	return res
}

func (d *Dispatcher) dispatch(ctx context.Context, req Request) Result {
	tool, ok := d.catalog.Lookup(req.Name)
	if !ok {
		return Failure("Unknown tool: " + req.Name)
	}
	creds := d.creds()
	if err := creds.Require(); err != nil {
		return Failure(credentialMessage(err))
	}
	env := Env{API: d.newClient(creds.BotToken), TeamID: creds.TeamID}

	var (
		payload any
		err     error
	)
	var pc panics.Catcher
	pc.Try(func() { payload, err = tool.invoke(ctx, env, req.Arguments) })
	if r := pc.Recovered(); r != nil {
		d.log.ErrorContext(ctx, "tool.call.panic", slog.String("panic", r.String()))
		return Failure(fmt.Sprintf("internal error: %v", r.Value))
	}
	if err != nil {
		return Failure(err.Error())
	}
	return Success(payload)
}

// credentialMessage strips the sentinel prefix so callers see only the diagnostic.
func credentialMessage(err error) string {
	return strings.TrimPrefix(err.Error(), config.ErrMissingCredential.Error()+": ")
}
