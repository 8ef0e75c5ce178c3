package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/search"
)

var (
	// ErrTransport covers network failures, non-success statuses and errors
	// reported by the upstream itself. Not retried.
	ErrTransport = errors.New("transport error")
	// ErrDecode marks a malformed event line. Recovered per line.
	ErrDecode = errors.New("decode error")
)

// StatusError is returned when the upstream answers with a non-success status.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string { return fmt.Sprintf("API error: %d", e.Code) }

func (e *StatusError) Unwrap() error { return ErrTransport }

// Request is the body POSTed to the upstream chat backend.
type Request struct {
	Messages  []WireMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	WebSearch bool          `json:"web_search"`
}

// WireMessage is one history entry with its text segments collapsed.
type WireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Accumulator opens stream sessions against the upstream chat endpoint.
type Accumulator struct {
	client  *http.Client
	url     string
	search  *search.Coordinator
	timeout time.Duration
}

// Option configures an Accumulator.
type Option func(*Accumulator)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(a *Accumulator) { a.client = c }
}

// WithTimeout bounds a whole session. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(a *Accumulator) { a.timeout = d }
}

// NewAccumulator creates an Accumulator that posts to url and records search
// results into coord.
func NewAccumulator(url string, coord *search.Coordinator, opts ...Option) *Accumulator {
	a := &Accumulator{
		client: &http.Client{},
		url:    url,
		search: coord,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewSession creates an idle session.
func (a *Accumulator) NewSession() *Session {
	return &Session{ID: uuid.NewString(), acc: a}
}

// Session is a single in-flight exchange with the upstream.
type Session struct {
	ID string

	acc       *Accumulator
	state     atomic.Int32
	webSearch bool
	captured  bool
	text      string
}

// State returns the current lifecycle state. Safe to call from any goroutine.
func (s *Session) State() model.SessionState {
	return model.SessionState(s.state.Load())
}

// WebSearch reports whether web search was enabled when the session started.
func (s *Session) WebSearch() bool { return s.webSearch }

func (s *Session) setState(next model.SessionState) {
	prev := model.SessionState(s.state.Swap(int32(next)))
	slog.Debug("Stream session state changed", "session_id", s.ID, "from", prev.String(), "to", next.String())
}

// Run sends history upstream and streams accumulated-text snapshots into out
// until the stream ends, fails or ctx is cancelled. out is closed on return.
//
// The returned error is nil on completion, ctx.Err() on cancellation, and the
// failure cause otherwise. On failure one last snapshot carrying a readable
// error message is sent; after cancellation nothing more is sent.
func (s *Session) Run(ctx context.Context, history []model.Message, out chan<- model.Snapshot) error {
	defer close(out)
	if !s.state.CompareAndSwap(int32(model.StateIdle), int32(model.StateConnecting)) {
		return fmt.Errorf("session %s already started", s.ID)
	}
	s.webSearch = s.acc.search.BeginExchange()
	slog.Info("Stream session started", "session_id", s.ID, "web_search", s.webSearch, "history", len(history))

	runCtx := ctx
	if s.acc.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.acc.timeout)
		defer cancel()
	}

	err := s.stream(runCtx, history, out)
	return s.finish(ctx, err, out)
}

func (s *Session) finish(ctx context.Context, err error, out chan<- model.Snapshot) error {
	switch {
	case err == nil:
		if s.webSearch {
			s.acc.search.Finish()
		}
		s.setState(model.StateCompleted)
		slog.Info("Stream session completed", "session_id", s.ID, "chars", len(s.text))
		return nil

	case ctx.Err() != nil:
		s.acc.search.Finish()
		s.setState(model.StateCancelled)
		slog.Info("Stream session cancelled", "session_id", s.ID)
		return ctx.Err()

	default:
		s.acc.search.Finish()
		s.setState(model.StateFailed)
		slog.Error("Stream session failed", "session_id", s.ID, "error", err)

		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = fmt.Sprintf("stream timed out after %s", s.acc.timeout)
		}
		s.text = "Error: " + msg
		select {
		case out <- model.Snapshot{Text: s.text, Failed: true}:
		case <-ctx.Done():
		}
		return err
	}
}

func (s *Session) stream(ctx context.Context, history []model.Message, out chan<- model.Snapshot) error {
	body, err := json.Marshal(Request{Messages: toWire(history), Stream: true, WebSearch: s.webSearch})
	if err != nil {
		return fmt.Errorf("could not marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.acc.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: could not create request: %w", ErrTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := s.acc.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() {
		if cErr := resp.Body.Close(); cErr != nil {
			slog.Debug("Failed to close upstream response body", "session_id", s.ID, "error", cErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(bodyBytes)}
	}

	dec := newChunkDecoder()
	var lines lineSplitter
	buf := make([]byte, 32*1024)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if s.State() == model.StateConnecting {
				s.setState(model.StateStreaming)
			}
			text, err := dec.Decode(buf[:n], false)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrDecode, err)
			}
			if err := s.handleLines(ctx, lines.Feed(text), out); err != nil {
				return err
			}
		}

		if errors.Is(readErr, io.EOF) {
			text, err := dec.Decode(nil, true)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrDecode, err)
			}
			tail := append(lines.Feed(text), lines.Flush()...)
			return s.handleLines(ctx, tail, out)
		}
		if readErr != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("%w: %w", ErrTransport, readErr)
		}
	}
}

func (s *Session) handleLines(ctx context.Context, lines []string, out chan<- model.Snapshot) error {
	for _, line := range lines {
		p, ok, err := parseLine(line)
		if err != nil {
			slog.Warn("Skipping malformed stream line", "session_id", s.ID, "error", err)
			continue
		}
		if !ok {
			continue
		}
		if p.Error != "" {
			return fmt.Errorf("%w: upstream reported: %s", ErrTransport, p.Error)
		}

		if p.SearchResults != "" && s.webSearch && !s.captured {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.captured = true
			s.acc.search.Capture(p.SearchResults)
			slog.Debug("Captured search results", "session_id", s.ID, "chars", len(p.SearchResults))
		}

		if p.Text != "" {
			s.text = p.Text
			if err := emit(ctx, out, model.Snapshot{Text: s.text}); err != nil {
				return err
			}
		}
	}
	return nil
}

func emit(ctx context.Context, out chan<- model.Snapshot, snap model.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case out <- snap:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func toWire(history []model.Message) []WireMessage {
	msgs := make([]WireMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, WireMessage{Role: string(m.Role), Content: m.Text()})
	}
	return msgs
}
