// Keyscope - Cloud Key-Value Store Browser and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/keyscope/internal/logging"
	"github.com/tomtom215/keyscope/internal/metrics"
)

// maxErrorBodySize limits how much of a failing response body is kept for
// diagnostics, preventing unbounded allocation on large error pages.
const maxErrorBodySize = 64 * 1024 // 64KB

// RetryPolicy controls the engine's transient-failure behavior.
type RetryPolicy struct {
	// MaxAttempts caps resends (429, 502, 504, and opted-in transport
	// errors) per logical request. 0 means unbounded: a persistently
	// throttled operation retries until the caller cancels, matching the
	// upstream behavior this engine reimplements.
	MaxAttempts int

	// BaseDelay is the first 429 backoff step. The schedule is
	// {BaseDelay, 2*BaseDelay, 4*BaseDelay} and then stays flat.
	BaseDelay time.Duration

	// TransportErrors, when true, resends after network-level failures
	// (DNS, connection reset) the same way as 502/504. Off by default:
	// those failures usually mean misconfiguration and should surface
	// immediately.
	TransportErrors bool
}

// DefaultRetryPolicy matches the documented backoff schedule
// {2000, 4000, 8000, 8000, ...} milliseconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     0,
		BaseDelay:       2 * time.Second,
		TransportErrors: false,
	}
}

// Engine sends request descriptors and applies the retry, backoff, and
// pagination rules. Safe for concurrent use; each logical request tracks
// its own retry state.
type Engine struct {
	httpClient *http.Client
	policy     RetryPolicy
	tlog       *TransportLog
	clock      *ServerClock
	onStatus   func(string)
}

// NewEngine creates an engine. The transport log and server clock are
// passed in rather than being package globals so tests and embedders own
// their lifecycle. A nil httpClient falls back to a 30s-timeout default.
func NewEngine(httpClient *http.Client, policy RetryPolicy, tlog *TransportLog, clock *ServerClock) *Engine {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultRetryPolicy().BaseDelay
	}
	if tlog == nil {
		tlog = NewTransportLog()
	}
	if clock == nil {
		clock = NewServerClock()
	}
	return &Engine{
		httpClient: httpClient,
		policy:     policy,
		tlog:       tlog,
		clock:      clock,
	}
}

// OnStatus subscribes a callback for human-readable progress messages
// (retry waits, resends). Pass nil to unsubscribe. Not safe to call while
// requests are in flight.
func (e *Engine) OnStatus(fn func(string)) {
	e.onStatus = fn
}

// TransportLog returns the log this engine records into.
func (e *Engine) TransportLog() *TransportLog {
	return e.tlog
}

// Clock returns the server clock estimate this engine feeds.
func (e *Engine) Clock() *ServerClock {
	return e.clock
}

func (e *Engine) status(format string, args ...any) {
	if e.onStatus != nil {
		e.onStatus(fmt.Sprintf(format, args...))
	}
}

// operation is the retry state of one logical request. The throttle count
// deliberately persists across pages: sustained rate limiting over a long
// paginated walk keeps the backoff at its grown value instead of probing
// from the bottom on every page.
type operation struct {
	eng       *Engine
	id        string
	throttled int // HTTP 429 responses seen so far
	resends   int // all transient resends, for the MaxAttempts cap
}

func (e *Engine) newOperation() *operation {
	return &operation{eng: e, id: uuid.NewString()}
}

// backoffDelay returns the wait for the current throttle count:
// 1st 429 -> BaseDelay, 2nd -> 2x, 3rd and beyond -> 4x, flat.
func (o *operation) backoffDelay() time.Duration {
	step := o.throttled
	if step > 3 {
		step = 3
	}
	return o.eng.policy.BaseDelay << (step - 1)
}

// exhausted reports whether the resend cap has been reached. Never true
// when the policy is unbounded.
func (o *operation) exhausted() bool {
	return o.eng.policy.MaxAttempts > 0 && o.resends >= o.eng.policy.MaxAttempts
}

// send issues one descriptor, resending through transient failures until
// a non-transient response arrives. The returned response's body is still
// open; the caller owns closing it. Terminal statuses (anything but 429,
// 502, 504) are returned as-is for the caller to classify.
func (o *operation) send(ctx context.Context, req *Request) (*http.Response, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Pre-send so aborted and failed calls are recorded too.
		o.eng.tlog.Record(o.id, req.Method, req.URL)

		var bodyReader io.Reader
		if req.Body != nil {
			bodyReader = bytes.NewReader(req.Body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		for k, values := range req.Header {
			for _, v := range values {
				httpReq.Header.Add(k, v)
			}
		}

		start := time.Now()
		resp, err := o.eng.httpClient.Do(httpReq)
		metrics.RequestDuration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())

		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.RequestsTotal.WithLabelValues(req.Method, "transport_error").Inc()
			if !o.eng.policy.TransportErrors {
				return nil, fmt.Errorf("transport failure: %w", err)
			}
			o.resends++
			if o.exhausted() {
				return nil, fmt.Errorf("%w: transport failure: %s", ErrRetriesExhausted, err)
			}
			metrics.TransientRetries.WithLabelValues("transport").Inc()
			o.eng.status("transport failure, resending: %v", err)
			continue
		}

		metrics.RequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()
		o.eng.clock.Observe(resp.Header)

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			drainAndClose(resp.Body)
			o.throttled++
			o.resends++
			metrics.RateLimitHits.Inc()
			if o.exhausted() {
				return nil, fmt.Errorf("%w: rate limited after %d resends", ErrRetriesExhausted, o.resends)
			}
			delay := o.backoffDelay()
			metrics.TransientRetries.WithLabelValues("rate_limit").Inc()
			o.eng.status("rate limited, retrying in %s", delay)
			logging.Debug().
				Str("request_id", o.id).
				Int("throttled", o.throttled).
				Dur("delay", delay).
				Msg("429 received, backing off")
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}

		case http.StatusBadGateway, http.StatusGatewayTimeout:
			drainAndClose(resp.Body)
			o.resends++
			if o.exhausted() {
				return nil, fmt.Errorf("%w: gateway failure %d after %d resends",
					ErrRetriesExhausted, resp.StatusCode, o.resends)
			}
			metrics.TransientRetries.WithLabelValues("gateway").Inc()
			o.eng.status("gateway failure %d, resending", resp.StatusCode)

		default:
			return resp, nil
		}
	}
}

// result of one non-transient physical call.
type callResult struct {
	status int
	header http.Header
	body   []byte
}

// execute sends a descriptor and classifies the terminal status: 200
// yields the body and headers, 404 yields an empty result (expected
// absence, not failure), anything else becomes a StatusError carrying the
// response body as the diagnostic.
func (o *operation) execute(ctx context.Context, req *Request) (*callResult, error) {
	resp, err := o.send(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return &callResult{status: resp.StatusCode, header: resp.Header, body: body}, nil

	case http.StatusNotFound:
		return &callResult{status: resp.StatusCode, header: resp.Header}, nil

	default:
		diagnostic := readBodyForError(resp.Body)
		o.eng.status("request failed with status %d", resp.StatusCode)
		return nil, &StatusError{Code: resp.StatusCode, Body: string(diagnostic)}
	}
}

// collectPages walks a cursor-paginated listing to completion. build is
// called with the cursor for each page ("" first); parse returns the
// page's items, the next cursor, and whether the page held anything.
//
// Termination: an absent/empty page, a missing next cursor, or the soft
// max cap. The cap stops further pages once met but never truncates an
// already-received page. Pages are strictly sequential; page N+1's cursor
// is only known once page N is parsed.
func collectPages[T any](
	ctx context.Context,
	o *operation,
	build func(cursor string) (*Request, error),
	parse func(body []byte) ([]T, string, bool),
	max int,
) ([]T, error) {
	var acc []T
	cursor := ""

	for {
		req, err := build(cursor)
		if err != nil {
			return nil, err
		}

		res, err := o.execute(ctx, req)
		if err != nil {
			return nil, err
		}
		if res.status == http.StatusNotFound {
			return acc, nil
		}

		items, next, ok := parse(res.body)
		if !ok || len(items) == 0 {
			return acc, nil
		}
		acc = append(acc, items...)
		metrics.PagesFetched.Inc()

		if next == "" {
			return acc, nil
		}
		if max > 0 && len(acc) >= max {
			return acc, nil
		}
		cursor = next
	}
}

// sleepCtx waits for d or until ctx is done, whichever comes first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// drainAndClose discards a response body so the connection can be reused
// before a resend.
func drainAndClose(rc io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, maxErrorBodySize))
	_ = rc.Close()
}

// readBodyForError reads at most maxErrorBodySize of a failing response
// for diagnostics, noting truncation.
func readBodyForError(r io.Reader) []byte {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("\n... (truncated)")...)
	}
	return body
}
