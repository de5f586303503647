// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/pride-gateway/internal/analytics"
	"github.com/pdiddy/pride-gateway/internal/archive"
	"github.com/pdiddy/pride-gateway/internal/mcp"
	"github.com/pdiddy/pride-gateway/internal/notify"
	"github.com/pdiddy/pride-gateway/internal/pipeline"
	"github.com/pdiddy/pride-gateway/internal/tools"
	"github.com/pdiddy/pride-gateway/pkg/types"
)

// archiveStub answers the facet and search requests the fallback plan
// issues, plus project detail fan-out.
func archiveStub(t *testing.T) *httptest.Server {
	t.Helper()
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/facet/projects":
			fmt.Fprint(w, `{"organisms":{"Homo sapiens (human)":120}}`)
		case r.URL.Path == "/search/projects":
			w.Header().Set("X-Total-Count", "2")
			fmt.Fprint(w, `[{"accession":"PXD000001","title":"First"},{"accession":"PXD000002","title":"Second"}]`)
		case strings.HasPrefix(r.URL.Path, "/projects/"):
			acc := strings.TrimPrefix(r.URL.Path, "/projects/")
			fmt.Fprintf(w, `{"accession":%q,"title":"Project %s"}`, acc, acc)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(upstream.Close)
	return upstream
}

func testGateway(t *testing.T) *Server {
	t.Helper()
	upstream := archiveStub(t)

	client := archive.NewClient(types.ArchiveConfig{})
	client.BaseURL = upstream.URL
	runner := &tools.Runner{Archive: client}

	store, err := analytics.NewStore(filepath.Join(t.TempDir(), "analytics.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &Server{
		Pipeline:  pipeline.New(runner, nil, types.LLMConfig{}, types.PipelineConfig{}),
		Analytics: store,
		MCP:       &mcp.Server{Runner: runner},
		Version:   "test",
	}
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := testGateway(t)
	rec := do(t, s, http.MethodGet, "/api/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body["status"] != "ok" || body["version"] != "test" {
		t.Fatalf("body = %v", body)
	}
}

func TestChat(t *testing.T) {
	s := testGateway(t)
	rec := do(t, s, http.MethodPost, "/api/chat", `{"question":"mouse proteome","user_id":"u1"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}
	if resp.Response == "" {
		t.Fatal("empty response text")
	}
	if resp.SessionID == "" {
		t.Fatal("session id not generated")
	}
	if len(resp.ToolsCalled) == 0 {
		t.Fatal("no tools recorded")
	}

	// The question must land in the analytics log.
	records, err := s.Analytics.Questions(context.Background(), analytics.QueryOptions{})
	if err != nil {
		t.Fatalf("querying: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("logged %d records, want 1", len(records))
	}
	if records[0].Question != "mouse proteome" || records[0].UserID != "u1" {
		t.Fatalf("record = %+v", records[0])
	}
	if !records[0].Success {
		t.Fatal("record not marked successful")
	}
}

func TestChatKeepsSessionID(t *testing.T) {
	s := testGateway(t)
	rec := do(t, s, http.MethodPost, "/api/chat", `{"question":"human data","session_id":"sess-42"}`)

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if resp.SessionID != "sess-42" {
		t.Fatalf("session id = %q, want sess-42", resp.SessionID)
	}
}

func TestChatBadRequests(t *testing.T) {
	s := testGateway(t)
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"get not allowed", http.MethodGet, "", http.StatusMethodNotAllowed},
		{"invalid json", http.MethodPost, "{oops", http.StatusBadRequest},
		{"missing question", http.MethodPost, `{"user_id":"u1"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, "/api/chat", tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestChatNotifies(t *testing.T) {
	var notified int
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		notified++
	}))
	defer hook.Close()

	s := testGateway(t)
	s.Notifier = notify.NewNotifier(hook.URL)

	do(t, s, http.MethodPost, "/api/chat", `{"question":"mouse proteome"}`)
	if notified != 1 {
		t.Fatalf("webhook called %d times, want 1", notified)
	}
}

func TestQuestionsEndpoint(t *testing.T) {
	s := testGateway(t)
	for i := 0; i < 3; i++ {
		rec := analytics.Record{
			Question:  fmt.Sprintf("question %d", i),
			UserID:    "u1",
			Timestamp: time.Now().UTC(),
			Success:   true,
		}
		if _, err := s.Analytics.Log(context.Background(), rec); err != nil {
			t.Fatalf("seeding: %v", err)
		}
	}

	rec := do(t, s, http.MethodGet, "/api/questions?limit=2&user_id=u1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Questions []analytics.Record `json:"questions"`
		Total     int                `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.Total != 2 || len(body.Questions) != 2 {
		t.Fatalf("total = %d, records = %d", body.Total, len(body.Questions))
	}
	if body.Questions[0].Question != "question 2" {
		t.Fatalf("expected newest first, got %q", body.Questions[0].Question)
	}
}

func TestStoreQuestion(t *testing.T) {
	s := testGateway(t)
	rec := do(t, s, http.MethodPost, "/api/questions",
		`{"question":"stored externally","user_id":"u9","response_time_ms":300,"success":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if body.ID == 0 || body.Status != "stored" {
		t.Fatalf("body = %+v", body)
	}

	records, err := s.Analytics.Questions(context.Background(), analytics.QueryOptions{})
	if err != nil {
		t.Fatalf("querying: %v", err)
	}
	if len(records) != 1 || records[0].Question != "stored externally" {
		t.Fatalf("records = %+v", records)
	}

	missing := do(t, s, http.MethodPost, "/api/questions", `{"user_id":"u9"}`)
	if missing.Code != http.StatusBadRequest {
		t.Fatalf("missing question status = %d", missing.Code)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	s := testGateway(t)
	rec := analytics.Record{Question: "q", Timestamp: time.Now().UTC(), Success: true}
	if _, err := s.Analytics.Log(context.Background(), rec); err != nil {
		t.Fatalf("seeding: %v", err)
	}

	res := do(t, s, http.MethodGet, "/api/analytics?days=7", "")
	if res.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", res.Code, res.Body.String())
	}
	var report analytics.Report
	if err := json.Unmarshal(res.Body.Bytes(), &report); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if report.TotalQuestions != 1 || report.Days != 7 {
		t.Fatalf("report = %+v", report)
	}

	bad := do(t, s, http.MethodGet, "/api/analytics?days=abc", "")
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("bad days status = %d", bad.Code)
	}
}

func TestMCPMount(t *testing.T) {
	s := testGateway(t)
	rec := do(t, s, http.MethodPost, "/mcp/", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "data: ") {
		t.Fatalf("expected SSE framing, got %q", rec.Body.String()[:20])
	}
}
