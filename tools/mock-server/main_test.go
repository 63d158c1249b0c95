package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func loadTestFixture(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join("..", "..", "internal", "extract", "testdata", "search.html")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	return data
}

func TestSearchHandler(t *testing.T) {
	page := loadTestFixture(t)
	mux := newMux(testLogger(), page, &pushLog{}, false)

	req := httptest.NewRequest(http.MethodGet, searchPath+"?ar=030", http.NoBody)
	req.Header.Set("User-Agent", "test")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content-type=%q, want text/html", ct)
	}
	if !strings.Contains(w.Body.String(), "cassetteitem") {
		t.Error("expected fixture markup in body")
	}
}

func TestPushHandler(t *testing.T) {
	tests := []struct {
		name       string
		auth       string
		body       string
		fail       bool
		wantStatus int
		wantLogged int
	}{
		{
			name:       "valid push",
			auth:       "Bearer tok",
			body:       `{"to":"U1","messages":[{"type":"text","text":"hi"}]}`,
			wantStatus: http.StatusOK,
			wantLogged: 1,
		},
		{
			name:       "missing token",
			body:       `{"to":"U1","messages":[{"type":"text","text":"hi"}]}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid json",
			auth:       "Bearer tok",
			body:       `{not json`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing recipient",
			auth:       "Bearer tok",
			body:       `{"messages":[{"type":"text","text":"hi"}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "forced failure",
			auth:       "Bearer tok",
			body:       `{"to":"U1","messages":[{"type":"text","text":"hi"}]}`,
			fail:       true,
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &pushLog{}
			mux := newMux(testLogger(), nil, log, tt.fail)

			req := httptest.NewRequest(http.MethodPost, "/v2/bot/message/push", strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status=%d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if got := len(log.all()); got != tt.wantLogged {
				t.Errorf("logged=%d, want %d", got, tt.wantLogged)
			}
		})
	}
}

func TestPushesHandler(t *testing.T) {
	log := &pushLog{}
	mux := newMux(testLogger(), nil, log, false)

	req := httptest.NewRequest(http.MethodPost, "/v2/bot/message/push",
		strings.NewReader(`{"to":"U1","messages":[{"type":"text","text":"【新着物件 1件】"}]}`))
	req.Header.Set("Authorization", "Bearer tok")
	mux.ServeHTTP(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pushes", http.NoBody))

	var got []pushRequest
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("pushes=%d, want 1", len(got))
	}
	if got[0].To != "U1" || got[0].Messages[0].Text != "【新着物件 1件】" {
		t.Errorf("unexpected push %+v", got[0])
	}
}
