package directory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/httpclient"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/logger"
	"github.com/alfredfullstack2024/tiendasappfrontend/pkg/tracing"
)

const maxBodyBytes = 4 << 20

// Doer sends a request to one candidate base.
type Doer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Candidate is one API base and the transport used to reach it.
type Candidate struct {
	Base string
	Doer Doer
}

// Client talks to the Remote Directory API. Every operation walks the
// candidate bases strictly in order, one attempt each.
type Client struct {
	contract   Contract
	candidates []Candidate
	logger     *slog.Logger
	tracer     trace.Tracer
}

// New builds a client with one circuit breaker per base over a shared pooled
// HTTP client.
func New(contract Contract, httpCfg httpclient.Config, breaker func(name string) httpclient.CircuitBreakerConfig, logger *slog.Logger) (*Client, error) {
	if err := contract.Validate(); err != nil {
		return nil, err
	}
	if breaker == nil {
		breaker = httpclient.DefaultCircuitBreakerConfig
	}

	shared := httpclient.New(httpCfg)
	candidates := make([]Candidate, 0, len(contract.Bases))
	for i, base := range contract.Bases {
		cb := httpclient.NewCircuitBreakerClient(shared, breaker(fmt.Sprintf("directory-%d", i)), logger)
		candidates = append(candidates, Candidate{Base: base, Doer: cb})
	}
	return NewWithCandidates(contract, candidates, logger), nil
}

// NewWithCandidates builds a client over explicit candidates. The contract's
// Bases are ignored in favour of the candidates' own.
func NewWithCandidates(contract Contract, candidates []Candidate, logger *slog.Logger) *Client {
	bases := make([]string, 0, len(candidates))
	for _, c := range candidates {
		bases = append(bases, c.Base)
	}
	contract.Bases = bases
	return &Client{
		contract:   contract,
		candidates: candidates,
		logger:     logger,
		tracer:     tracing.Tracer("directory"),
	}
}

// Contract returns the resolved API contract.
func (c *Client) Contract() Contract {
	return c.contract
}

type target struct {
	candidate int
	url       string
}

// targets expands every base with each path, base-major:
// base0/p0, base0/p1, base1/p0, ...
func (c *Client) targets(paths ...[]string) []target {
	out := make([]target, 0, len(c.candidates)*len(paths))
	for i, cand := range c.candidates {
		for _, segs := range paths {
			out = append(out, target{candidate: i, url: endpoint(cand.Base, segs...)})
		}
	}
	return out
}

func (c *Client) log(ctx context.Context) *slog.Logger {
	return logger.WithContext(ctx, c.logger)
}

// classify decides what a body means once a candidate answered 2xx.
type classify func(body []byte) Outcome

// get walks targets until one answers 2xx and accept classifies its body as
// OutcomeOK. It returns the attempts made and an *ExhaustedError when none did.
func (c *Client) get(ctx context.Context, op string, targets []target, accept classify) ([]Attempt, error) {
	attempts := make([]Attempt, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return attempts, fmt.Errorf("directory %s: %w", op, err)
		}
		a := c.getOnce(ctx, op, t, accept)
		attempts = append(attempts, a)
		if a.Outcome == OutcomeOK {
			return attempts, nil
		}
	}
	return attempts, c.exhausted(ctx, op, attempts)
}

func (c *Client) getOnce(ctx context.Context, op string, t target, accept classify) (a Attempt) {
	a = Attempt{Candidate: t.candidate, URL: t.url}

	ctx, span := c.startAttempt(ctx, op, http.MethodGet, t)
	start := time.Now()
	defer func() { c.finishAttempt(ctx, span, op, a, start) }()

	attemptCtx, cancel := context.WithTimeout(ctx, c.contract.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, t.url, http.NoBody)
	if err != nil {
		a.Outcome, a.Err = OutcomeTransport, err
		return a
	}
	req.Header.Set("Accept", "application/json")
	tracing.InjectHTTP(attemptCtx, req.Header)

	resp, err := c.candidates[t.candidate].Doer.Do(attemptCtx, req)
	if err != nil {
		a.Outcome, a.Status = transportOutcome(err)
		a.Err = err
		return a
	}
	defer func() { _ = resp.Body.Close() }()
	a.Status = resp.StatusCode

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		a.Outcome, a.Err = OutcomeTransport, fmt.Errorf("read body: %w", err)
		return a
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		a.Outcome = OutcomeNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		a.Outcome, a.Err = OutcomeTransport, fmt.Errorf("unexpected status %d", resp.StatusCode)
	default:
		a.Outcome = accept(body)
		if a.Outcome == OutcomeMalformed {
			a.Err = errors.New("unrecognized payload")
		}
	}
	return a
}

// reply is the answer of the candidate that handled a submission.
type reply struct {
	status int
	body   []byte
}

// send posts body to each target until one of them handles it. A target is
// skipped only when the request provably never reached a handler: the
// breaker refused it, the dial failed, or the route does not exist (404/405).
// Any other failure stops the walk so a submission is never sent twice.
func (c *Client) send(ctx context.Context, op string, targets []target, contentType string, body []byte, timeout time.Duration) (*reply, error) {
	attempts := make([]Attempt, 0, len(targets))
	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("directory %s: %w", op, err)
		}
		rep, a := c.sendOnce(ctx, op, t, contentType, body, timeout)
		attempts = append(attempts, a)
		if rep != nil {
			return rep, nil
		}
		if a.Outcome != OutcomeUnreachable && a.Outcome != OutcomeCircuitOpen && a.Outcome != OutcomeNotFound {
			return nil, &TransportError{URL: a.URL, Outcome: a.Outcome, Status: a.Status, Err: a.Err}
		}
	}
	return nil, c.exhausted(ctx, op, attempts)
}

func (c *Client) sendOnce(ctx context.Context, op string, t target, contentType string, body []byte, timeout time.Duration) (rep *reply, a Attempt) {
	a = Attempt{Candidate: t.candidate, URL: t.url}

	ctx, span := c.startAttempt(ctx, op, http.MethodPost, t)
	start := time.Now()
	defer func() { c.finishAttempt(ctx, span, op, a, start) }()

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		a.Outcome, a.Err = OutcomeTransport, err
		return nil, a
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	tracing.InjectHTTP(attemptCtx, req.Header)

	resp, err := c.candidates[t.candidate].Doer.Do(attemptCtx, req)
	if err != nil {
		var serverErr *httpclient.ServerError
		if errors.As(err, &serverErr) {
			a.Outcome, a.Status, a.Err = OutcomeTransport, serverErr.StatusCode, err
			return &reply{status: serverErr.StatusCode, body: serverErr.Body}, a
		}
		a.Outcome, a.Status = transportOutcome(err)
		a.Err = err
		return nil, a
	}
	defer func() { _ = resp.Body.Close() }()
	a.Status = resp.StatusCode

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		a.Outcome, a.Err = OutcomeTransport, fmt.Errorf("read body: %w", err)
		return nil, a
	}

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusMethodNotAllowed:
		a.Outcome = OutcomeNotFound
		return nil, a
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		a.Outcome = OutcomeOK
	default:
		a.Outcome = OutcomeTransport
	}
	return &reply{status: resp.StatusCode, body: respBody}, a
}

func transportOutcome(err error) (Outcome, int) {
	var serverErr *httpclient.ServerError
	switch {
	case httpclient.IsCircuitOpen(err):
		return OutcomeCircuitOpen, 0
	case errors.As(err, &serverErr):
		return OutcomeTransport, serverErr.StatusCode
	case httpclient.IsDialError(err):
		return OutcomeUnreachable, 0
	default:
		return OutcomeTransport, 0
	}
}

func (c *Client) startAttempt(ctx context.Context, op, method string, t target) (context.Context, trace.Span) {
	return c.tracer.Start(ctx, "directory."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("http.url", t.url),
			attribute.Int("directory.candidate", t.candidate),
		),
	)
}

func (c *Client) finishAttempt(ctx context.Context, span trace.Span, op string, a Attempt, start time.Time) {
	recordAttempt(op, a, time.Since(start).Seconds())

	span.SetAttributes(attribute.String("directory.outcome", string(a.Outcome)))
	if a.Status != 0 {
		span.SetAttributes(attribute.Int("http.status_code", a.Status))
	}
	if a.Outcome != OutcomeOK {
		span.SetStatus(codes.Error, string(a.Outcome))
		if a.Err != nil {
			span.RecordError(a.Err)
		}
	}
	span.End()

	if a.Outcome == OutcomeOK {
		return
	}
	attrs := []any{
		slog.String("operation", op),
		slog.Int("candidate", a.Candidate),
		slog.String("url", a.URL),
		slog.String("outcome", string(a.Outcome)),
	}
	if a.Status != 0 {
		attrs = append(attrs, slog.Int("status", a.Status))
	}
	if a.Err != nil {
		attrs = append(attrs, slog.String("error", a.Err.Error()))
	}
	c.log(ctx).WarnContext(ctx, "directory attempt failed", attrs...)
}

func (c *Client) exhausted(ctx context.Context, op string, attempts []Attempt) error {
	err := &ExhaustedError{Op: op, Attempts: attempts}
	exhaustedTotal.WithLabelValues(op, err.result()).Inc()
	c.log(ctx).ErrorContext(ctx, "directory candidates exhausted",
		slog.String("operation", op),
		slog.Int("attempts", len(attempts)),
		slog.String("result", err.result()),
	)
	return err
}
