// Package main implements a mock SUUMO search page and LINE push endpoint for
// local development. Point fetch.url, fetch.origin and line.endpoint at it to
// run the notifier end to end without touching the real services.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

const searchPath = "/jj/chintai/ichiran/FR301FC001/"

type pushRequest struct {
	To       string `json:"to"`
	Messages []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"messages"`
}

// pushLog keeps every accepted push for inspection via GET /pushes.
type pushLog struct {
	mu     sync.Mutex
	pushes []pushRequest
}

func (l *pushLog) add(p pushRequest) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pushes = append(l.pushes, p)
}

func (l *pushLog) all() []pushRequest {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]pushRequest, len(l.pushes))
	copy(out, l.pushes)
	return out
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "internal/extract/testdata/search.html", "path to search page fixture")
	failPush := flag.Bool("fail-push", false, "reject every push with 500")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	page, err := os.ReadFile(*fixtureFile) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "bytes", len(page))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, newMux(logger, page, &pushLog{}, *failPush)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newMux(logger *slog.Logger, page []byte, log *pushLog, failPush bool) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+searchPath, searchHandler(logger, page))
	mux.HandleFunc("POST /v2/bot/message/push", pushHandler(logger, log, failPush))
	mux.HandleFunc("GET /pushes", pushesHandler(log))
	return mux
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func searchHandler(logger *slog.Logger, page []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			logger.Warn("search request without User-Agent")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write(page)
	}
}

func writeLineError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}

func pushHandler(logger *slog.Logger, log *pushLog, fail bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			logger.Warn("push request missing bearer token")
			writeLineError(w, http.StatusUnauthorized, "Authentication failed. Confirm that the access token in the authorization header is valid.")
			return
		}

		var req pushRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeLineError(w, http.StatusBadRequest, "The request body has 1 error(s)")
			return
		}
		if req.To == "" || len(req.Messages) == 0 {
			writeLineError(w, http.StatusBadRequest, "The property, 'to' or 'messages', must be specified.")
			return
		}

		if fail {
			writeLineError(w, http.StatusInternalServerError, "mock failure")
			return
		}

		log.add(req)
		for _, m := range req.Messages {
			logger.Info("push received", "to", req.To, "type", m.Type, "chars", len([]rune(m.Text)))
		}

		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		w.Write([]byte("{}"))
	}
}

func pushesHandler(log *pushLog) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
		json.NewEncoder(w).Encode(log.all())
	}
}
