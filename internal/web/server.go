package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"benchtrack/internal/benchdata"
	"benchtrack/internal/benchmark"
	"benchtrack/internal/metrics"
)

// maxEntryBytes bounds the body of an ingested entry.
const maxEntryBytes = 4 << 20

//go:embed static/*
var staticFiles embed.FS

// Options tunes the ingest endpoint.
type Options struct {
	// Threshold decides which ingested benches count as alerts.
	Threshold benchmark.Threshold
}

// Server exposes a data file over HTTP. The dataset is loaded from the
// store on every request so that a file rewritten by another process is
// picked up.
type Server struct {
	store   benchmark.Store
	metrics *metrics.Metrics
	opts    Options
	now     func() time.Time

	// serializes load-append-save cycles of the ingest endpoint
	mu sync.Mutex
}

// NewServer creates a new web server. A nil m gets a fresh Metrics.
func NewServer(store benchmark.Store, m *metrics.Metrics, opts Options) *Server {
	if m == nil {
		m = metrics.NewMetrics()
	}
	if opts.Threshold <= 0 {
		opts.Threshold = benchmark.DefaultThreshold
	}
	return &Server{store: store, metrics: m, opts: opts, now: time.Now}
}

// Handler returns the routed handler wrapped with request tracking.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	contentStatic, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /", http.FileServer(http.FS(contentStatic)))

	mux.HandleFunc("GET /data.js", s.handleDataJS)
	mux.HandleFunc("GET /api/entries", s.handleKeys)
	mux.HandleFunc("GET /api/entries/{key}", s.handleEntries)
	mux.HandleFunc("POST /api/entries/{key}", s.handleAppend)
	mux.HandleFunc("GET /api/entries/{key}/latest", s.handleLatest)
	mux.HandleFunc("GET /metrics", s.handleMetrics)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	return s.metrics.RequestTrackingMiddleware(mux)
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("serving benchmark data", "addr", "http://"+ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) load(w http.ResponseWriter) (*benchdata.Dataset, bool) {
	ds, err := s.store.Load()
	if err != nil {
		slog.Error("failed to load dataset", "error", err)
		http.Error(w, "failed to load benchmark data", http.StatusInternalServerError)
		return nil, false
	}
	return ds, true
}

func (s *Server) handleDataJS(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.load(w)
	if !ok {
		return
	}
	data, err := benchdata.Marshal(ds)
	if err != nil {
		http.Error(w, "failed to encode benchmark data", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write(data)
}

type keySummary struct {
	Key     string `json:"key"`
	Entries int    `json:"entries"`
	Latest  int64  `json:"latest,omitempty"`
}

type keysResponse struct {
	LastUpdate int64        `json:"lastUpdate"`
	RepoURL    string       `json:"repoUrl"`
	Keys       []keySummary `json:"keys"`
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.load(w)
	if !ok {
		return
	}
	resp := keysResponse{LastUpdate: ds.LastUpdate, RepoURL: ds.RepoURL, Keys: []keySummary{}}
	for _, key := range ds.Keys() {
		sum := keySummary{Key: key, Entries: ds.Len(key)}
		if latest, ok := ds.Latest(key); ok {
			sum.Latest = latest.Date
		}
		resp.Keys = append(resp.Keys, sum)
	}
	writeJSON(w, resp)
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.load(w)
	if !ok {
		return
	}
	key := r.PathValue("key")
	if ds.Len(key) == 0 {
		http.Error(w, "unknown key: "+key, http.StatusNotFound)
		return
	}
	writeJSON(w, ds.List(key))
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.load(w)
	if !ok {
		return
	}
	key := r.PathValue("key")
	latest, found := ds.Latest(key)
	if !found {
		http.Error(w, "unknown key: "+key, http.StatusNotFound)
		return
	}
	writeJSON(w, latest)
}

type appendResponse struct {
	Key     string   `json:"key"`
	Entries int      `json:"entries"`
	Alerts  []string `json:"alerts"`
}

func (s *Server) handleAppend(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var entry benchdata.Entry
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEntryBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&entry); err != nil {
		http.Error(w, "invalid entry: "+err.Error(), http.StatusBadRequest)
		return
	}
	tool, err := benchmark.ParseTool(entry.Tool)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if entry.Date == 0 {
		entry.Date = s.now().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.load(w)
	if !ok {
		return
	}
	prev, hasPrev := current.Latest(key)

	ds, err := s.store.Append(key, entry)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, benchdata.ErrOutOfOrder):
			status = http.StatusConflict
		case errors.Is(err, benchdata.ErrEmptyKey),
			errors.Is(err, benchdata.ErrNoBenches),
			errors.Is(err, benchdata.ErrNegativeValue):
			status = http.StatusUnprocessableEntity
		}
		http.Error(w, err.Error(), status)
		return
	}

	resp := appendResponse{Key: key, Entries: ds.Len(key), Alerts: []string{}}
	if hasPrev {
		for _, c := range benchmark.Alerts(benchmark.Compare(prev, entry, tool), s.opts.Threshold) {
			resp.Alerts = append(resp.Alerts, c.Name)
		}
	}
	s.metrics.RecordAppend(key, len(resp.Alerts))
	slog.Info("entry ingested", "key", key, "benches", len(entry.Benches), "alerts", len(resp.Alerts))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if ds, err := s.store.Load(); err == nil {
		s.metrics.Observe(ds)
	} else {
		slog.Warn("metrics scrape without fresh dataset", "error", err)
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
