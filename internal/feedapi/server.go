// Package feedapi serves the alerts feed to the front end.
package feedapi

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/johan/polymarket-whale-monitor/internal/feed"
)

// watchInterval is how often the feed file is checked for changes.
const watchInterval = 2 * time.Second

// Server is a read-only HTTP front for the alerts feed file. It serves the
// current records and pushes refreshed records to websocket clients whenever
// the monitor rewrites the file.
type Server struct {
	feedPath string
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

// NewServer creates a server over the given alerts feed file.
func NewServer(feedPath string) *Server {
	return &Server{
		feedPath: feedPath,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard may be served from a different origin than the API
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/alerts", s.handleAlerts)
	r.Get("/healthz", s.handleHealth)
	r.Get("/ws", s.handleWS)

	return r
}

// Run serves until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	go s.watch(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeClients()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	records := feed.Load(s.feedPath).Records()
	if records == nil {
		records = []feed.Record{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		log.Printf("Warning: writing alerts response: %v", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Warning: websocket upgrade: %v", err)
		return
	}

	// Send the current feed immediately so clients render without waiting
	// for the next rewrite. Register only after the write completes: the
	// connection allows a single concurrent writer, and once registered
	// the watch goroutine owns all writes.
	if err := writeRecords(conn, feed.Load(s.feedPath).Records()); err != nil {
		conn.Close()
		return
	}

	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()

	// Reads only detect disconnects; clients never send data.
	go func() {
		defer s.drop(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// watch polls the feed file mtime and broadcasts the refreshed records when
// it changes.
func (s *Server) watch(ctx context.Context) {
	var lastMod time.Time
	if info, err := os.Stat(s.feedPath); err == nil {
		lastMod = info.ModTime()
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(s.feedPath)
			if err != nil {
				continue
			}
			if !info.ModTime().After(lastMod) {
				continue
			}
			lastMod = info.ModTime()
			s.broadcast(feed.Load(s.feedPath).Records())
		}
	}
}

func (s *Server) broadcast(records []feed.Record) {
	s.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(s.clients))
	for conn := range s.clients {
		conns = append(conns, conn)
	}
	s.mu.Unlock()

	for _, conn := range conns {
		s.send(conn, records)
	}
}

func (s *Server) send(conn *websocket.Conn, records []feed.Record) {
	if err := writeRecords(conn, records); err != nil {
		s.drop(conn)
	}
}

func writeRecords(conn *websocket.Conn, records []feed.Record) error {
	if records == nil {
		records = []feed.Record{}
	}
	conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteJSON(records)
}

func (s *Server) drop(conn *websocket.Conn) {
	s.mu.Lock()
	_, ok := s.clients[conn]
	delete(s.clients, conn)
	s.mu.Unlock()
	if ok {
		conn.Close()
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		conn.Close()
	}
	s.clients = make(map[*websocket.Conn]struct{})
}
