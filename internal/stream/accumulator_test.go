package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/search"
)

// sseServer returns an upstream stand-in that writes each chunk verbatim and
// flushes after every write, so the client sees them as separate reads.
func sseServer(t *testing.T, chunks ...string) (*httptest.Server, <-chan Request) {
	t.Helper()
	requests := make(chan Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var captured Request
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		requests <- captured

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, c := range chunks {
			_, err := fmt.Fprint(w, c)
			assert.NoError(t, err)
			flusher.Flush()
		}
	}))
	t.Cleanup(server.Close)
	return server, requests
}

func event(payload string) string { return "data: " + payload + "\n\n" }

func textEvent(text string) string {
	b, _ := json.Marshal(map[string]any{"content": []map[string]string{{"type": "text", "text": text}}})
	return event(string(b))
}

// runSession runs a session to completion and collects every snapshot.
func runSession(t *testing.T, ctx context.Context, sess *Session, history []model.Message) ([]model.Snapshot, error) {
	t.Helper()
	out := make(chan model.Snapshot)
	errCh := make(chan error, 1)
	go func() { errCh <- sess.Run(ctx, history, out) }()

	var snaps []model.Snapshot
	for s := range out {
		snaps = append(snaps, s)
	}
	return snaps, <-errCh
}

func userHistory(text string) []model.Message {
	return []model.Message{model.NewTextMessage("u1", model.RoleUser, text)}
}

func TestSession_ReplaceSemantics(t *testing.T) {
	server, requests := sseServer(t,
		event(`{"content":[{"text":"Hi"}]}`),
		event(`{"content":[{"text":"Hi there"}]}`),
		"data: [DONE]\n\n",
	)
	coord := search.NewCoordinator(false)
	acc := NewAccumulator(server.URL, coord)
	sess := acc.NewSession()

	snaps, err := runSession(t, context.Background(), sess, userHistory("hello"))

	require.NoError(t, err)
	assert.Equal(t, []model.Snapshot{{Text: "Hi"}, {Text: "Hi there"}}, snaps)
	assert.Equal(t, model.StateCompleted, sess.State())

	captured := <-requests
	assert.True(t, captured.Stream)
	assert.False(t, captured.WebSearch)
	assert.Equal(t, []WireMessage{{Role: "user", Content: "hello"}}, captured.Messages)
}

func TestSession_RequestBodyCollapsesSegments(t *testing.T) {
	server, requests := sseServer(t)
	acc := NewAccumulator(server.URL, search.NewCoordinator(true))

	history := []model.Message{
		{ID: "1", Role: model.RoleUser, Content: []model.Segment{{Type: model.SegmentText, Text: "a"}, {Type: model.SegmentText, Text: "b"}}},
		model.NewTextMessage("2", model.RoleAssistant, "reply"),
	}
	_, err := runSession(t, context.Background(), acc.NewSession(), history)

	require.NoError(t, err)
	captured := <-requests
	assert.True(t, captured.WebSearch)
	assert.Equal(t, []WireMessage{{Role: "user", Content: "a\nb"}, {Role: "assistant", Content: "reply"}}, captured.Messages)
}

func TestSession_SearchResultsCapturedOnce(t *testing.T) {
	server, _ := sseServer(t,
		event(`{"content":[{"type":"text","text":""}],"search_results":"some result"}`),
		textEvent("Answer"),
		event(`{"content":[{"text":"Answer [1]"}],"search_results":"later result"}`),
		"data: [DONE]\n\n",
	)
	coord := search.NewCoordinator(true)
	coord.SetResults("stale")

	var searching []bool
	var resultWrites []string
	prev := coord.Snapshot()
	unwatch := coord.Watch(func(s model.SearchState) {
		if s.IsSearching != prev.IsSearching {
			searching = append(searching, s.IsSearching)
		}
		if s.Results != prev.Results && s.Results != "" {
			resultWrites = append(resultWrites, s.Results)
		}
		prev = s
	})
	defer unwatch()

	acc := NewAccumulator(server.URL, coord)
	snaps, err := runSession(t, context.Background(), acc.NewSession(), userHistory("q"))

	require.NoError(t, err)
	assert.Equal(t, []model.Snapshot{{Text: "Answer"}, {Text: "Answer [1]"}}, snaps)
	assert.Equal(t, []bool{true, false}, searching, "is_searching goes true then false exactly once")
	assert.Equal(t, []string{"some result"}, resultWrites)
	assert.Equal(t, model.SearchState{Enabled: true, IsSearching: false, Results: "some result"}, coord.Snapshot())
}

func TestSession_SearchIgnoredWhenDisabled(t *testing.T) {
	server, _ := sseServer(t,
		event(`{"content":[{"text":""}],"search_results":"some result"}`),
		textEvent("Answer"),
	)
	coord := search.NewCoordinator(false)
	coord.SetResults("previous")

	_, err := runSession(t, context.Background(), NewAccumulator(server.URL, coord).NewSession(), userHistory("q"))

	require.NoError(t, err)
	assert.Equal(t, model.SearchState{Enabled: false, Results: "previous"}, coord.Snapshot())
}

func TestSession_MalformedLineIsSkipped(t *testing.T) {
	server, _ := sseServer(t,
		textEvent("one"),
		"data: {not json\n\n",
		textEvent("one two"),
	)
	coord := search.NewCoordinator(false)

	snaps, err := runSession(t, context.Background(), NewAccumulator(server.URL, coord).NewSession(), userHistory("q"))

	require.NoError(t, err)
	assert.Equal(t, []model.Snapshot{{Text: "one"}, {Text: "one two"}}, snaps)
}

func TestSession_LinesSplitAcrossChunks(t *testing.T) {
	full := textEvent("héllo wörld")
	// Split in the middle of the JSON and inside the two-byte "é".
	cut := strings.Index(full, "é") + 1
	server, _ := sseServer(t, full[:cut], full[cut:])

	snaps, err := runSession(t, context.Background(), NewAccumulator(server.URL, search.NewCoordinator(false)).NewSession(), userHistory("q"))

	require.NoError(t, err)
	assert.Equal(t, []model.Snapshot{{Text: "héllo wörld"}}, snaps)
}

func TestSession_StreamWithoutTrailingNewline(t *testing.T) {
	server, _ := sseServer(t, `data: {"content":[{"text":"tail"}]}`)

	snaps, err := runSession(t, context.Background(), NewAccumulator(server.URL, search.NewCoordinator(false)).NewSession(), userHistory("q"))

	require.NoError(t, err)
	assert.Equal(t, []model.Snapshot{{Text: "tail"}}, snaps)
}

func TestSession_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	coord := search.NewCoordinator(true)
	sess := NewAccumulator(server.URL, coord).NewSession()
	snaps, err := runSession(t, context.Background(), sess, userHistory("q"))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.Code)

	assert.Equal(t, []model.Snapshot{{Text: "Error: API error: 500", Failed: true}}, snaps)
	assert.Equal(t, model.StateFailed, sess.State())
	assert.False(t, coord.Snapshot().IsSearching)
}

func TestSession_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	coord := search.NewCoordinator(true)
	sess := NewAccumulator(url, coord).NewSession()
	snaps, err := runSession(t, context.Background(), sess, userHistory("q"))

	assert.ErrorIs(t, err, ErrTransport)
	require.Len(t, snaps, 1)
	assert.True(t, snaps[0].Failed)
	assert.True(t, strings.HasPrefix(snaps[0].Text, "Error: "))
	assert.Equal(t, model.StateFailed, sess.State())
	assert.False(t, coord.Snapshot().IsSearching)
}

func TestSession_UpstreamErrorPayload(t *testing.T) {
	server, _ := sseServer(t,
		textEvent("partial"),
		event(`{"error":"model overloaded"}`),
		"data: [DONE]\n\n",
	)
	sess := NewAccumulator(server.URL, search.NewCoordinator(false)).NewSession()

	snaps, err := runSession(t, context.Background(), sess, userHistory("q"))

	assert.ErrorIs(t, err, ErrTransport)
	require.Len(t, snaps, 2)
	assert.Equal(t, "partial", snaps[0].Text)
	assert.Contains(t, snaps[1].Text, "model overloaded")
	assert.True(t, snaps[1].Failed)
}

func TestSession_CancelMidStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		_, _ = fmt.Fprint(w, textEvent("first"))
		flusher.Flush()

		select {
		case <-release:
		case <-r.Context().Done():
			return
		}
		_, _ = fmt.Fprint(w, event(`{"content":[{"text":"first second"}],"search_results":"late"}`))
		flusher.Flush()
	}))
	defer server.Close()
	defer close(release)

	coord := search.NewCoordinator(true)
	sess := NewAccumulator(server.URL, coord).NewSession()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan model.Snapshot)
	errCh := make(chan error, 1)
	go func() { errCh <- sess.Run(ctx, userHistory("q"), out) }()

	first := <-out
	assert.Equal(t, "first", first.Text)
	assert.Equal(t, model.StateStreaming, sess.State())
	assert.True(t, coord.Snapshot().IsSearching)

	cancel()

	var after []model.Snapshot
	for s := range out {
		after = append(after, s)
	}
	assert.Empty(t, after, "no snapshots after cancellation")
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Equal(t, model.StateCancelled, sess.State())
	assert.Equal(t, model.SearchState{Enabled: true, IsSearching: false, Results: ""}, coord.Snapshot())
}

func TestSession_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer server.Close()

	sess := NewAccumulator(server.URL, search.NewCoordinator(false), WithTimeout(50*time.Millisecond)).NewSession()
	snaps, err := runSession(t, context.Background(), sess, userHistory("q"))

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, snaps, 1)
	assert.Equal(t, "Error: stream timed out after 50ms", snaps[0].Text)
	assert.Equal(t, model.StateFailed, sess.State())
}

func TestSession_RunTwice(t *testing.T) {
	server, _ := sseServer(t)
	sess := NewAccumulator(server.URL, search.NewCoordinator(false)).NewSession()

	_, err := runSession(t, context.Background(), sess, nil)
	require.NoError(t, err)

	_, err = runSession(t, context.Background(), sess, nil)
	assert.ErrorContains(t, err, "already started")
}
