package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"svw.info/sudokucoach/internal/coach"
	"svw.info/sudokucoach/internal/config"
	"svw.info/sudokucoach/internal/domain"
	"svw.info/sudokucoach/internal/infrastructure/storage"
	"svw.info/sudokucoach/internal/logging"
	"svw.info/sudokucoach/internal/stage"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestRequestLoggerRecordsStatus(t *testing.T) {
	var buf syncBuffer
	h := requestLogger(logging.New(&buf, 0), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))
	out := buf.String()
	for _, want := range []string{"path=/brew", "status=418", "bytes=5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log line missing %q: %s", want, out)
		}
	}
}

func TestMuxServesIndexAndAssets(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Variant = domain.Mini4.Key()
	mux, err := newMux(cfg, logging.New(&syncBuffer{}, 0))
	if err != nil {
		t.Fatalf("newMux returned error: %v", err)
	}
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cases := map[string]int{
		"/":               http.StatusOK,
		"/static/app.css": http.StatusOK,
		"/nowhere":        http.StatusNotFound,
		"/api/list":       http.StatusOK,
	}
	for path, want := range cases {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != want {
			t.Fatalf("GET %s: status %d want %d", path, resp.StatusCode, want)
		}
	}
}

func TestNewServicePicksSolver(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.Solver = "backtrack"
	if got := newService(cfg).Solver; got == nil {
		t.Fatalf("solver not wired")
	}
}

func TestTranscriptPrintsFinishedLines(t *testing.T) {
	var buf syncBuffer
	tr := &transcript{w: &buf}
	st := stage.New(stage.Options{Variant: domain.Mini4, Timings: stage.Timings{Type: time.Millisecond}})
	tr.Attach(st)

	st.Say("Hello <b>there</b>")
	st.RevealAll()
	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(buf.String(), "coach: Hello there") {
		if time.Now().After(deadline) {
			t.Fatalf("line not printed: %q", buf.String())
		}
		time.Sleep(5 * time.Millisecond)
	}
	tr.Close()
	if st.Alive() {
		t.Fatalf("Close should destroy the stage")
	}
	if n := strings.Count(buf.String(), "coach:"); n != 1 {
		t.Fatalf("line printed %d times", n)
	}
}

func TestSkipCommandTogglesFlag(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	defer rootCmd.SetOut(nil)

	rootCmd.SetArgs([]string{"skip", "--data-dir", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	flags := storage.NewFlags(filepath.Join(dir, "flags.yaml"))
	if coach.ShouldAutoLaunch(flags) {
		t.Fatalf("lesson should be marked skipped")
	}

	rootCmd.SetArgs([]string{"skip", "--clear", "--data-dir", dir})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("skip --clear: %v", err)
	}
	if !coach.ShouldAutoLaunch(flags) {
		t.Fatalf("skip mark should be cleared")
	}
	if !strings.Contains(out.String(), "next start") {
		t.Fatalf("unexpected output %q", out.String())
	}
}
