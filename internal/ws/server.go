package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/crossfader-relay/crossfader/internal/config"
	"github.com/crossfader-relay/crossfader/internal/fader"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/shirou/gopsutil/v3/process"
)

// Server accepts client connections, keeps them alive and registers them
// with the hub for the lifetime of the connection.
type Server struct {
	cfg            config.ServerConfig
	hub            *Hub
	value          *fader.Value
	clock          clockwork.Clock
	started        time.Time
	allowedOrigins map[string]bool
	allowedHosts   map[string]bool

	mu      sync.RWMutex
	device  string
	control *int
}

// NewServer creates a server fanning out through hub.
func NewServer(cfg config.ServerConfig, hub *Hub, value *fader.Value, clock clockwork.Clock) *Server {
	s := &Server{
		cfg:            cfg,
		hub:            hub,
		value:          value,
		clock:          clock,
		started:        clock.Now(),
		allowedOrigins: make(map[string]bool),
		allowedHosts:   make(map[string]bool),
	}

	for _, origin := range cfg.AllowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		s.allowedOrigins[trimmed] = true
		if parsed, err := url.Parse(trimmed); err == nil && parsed.Host != "" {
			s.allowedHosts[parsed.Host] = true
		}
	}

	return s
}

// SetTracking records what is being tracked, for the status endpoint.
func (s *Server) SetTracking(device string, control int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.device = device
	s.control = &control
}

// SetupRoutes registers /ws and /api/status on mux.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/api/status", s.handleStatus)
}

// Handler returns a mux with all routes installed.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.SetupRoutes(mux)
	return mux
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	c := newClient(conn, s.cfg.WriteTimeout)
	if err := s.hub.Add(c); err != nil {
		if errors.Is(err, ErrTooManyConnections) {
			msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many connections")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(s.cfg.WriteTimeout))
		}
		log.Printf("ws client %s rejected: %v", c.id, err)
		c.Close()
		return
	}
	log.Printf("ws client %s connected from %s", c.id, r.RemoteAddr)

	s.serve(c)
}

// serve runs the connection's keepalive loop. The client is always removed
// from the hub on the way out, however the loop ended.
func (s *Server) serve(c *client) {
	defer func() {
		s.hub.Remove(c)
		c.Close()
	}()

	go c.readPump()

	for {
		res := c.receive(s.clock, s.cfg.IdleTimeout, s.cfg.PongTimeout)
		switch res.status {
		case recvOpen:
			continue
		case recvClosedByPeer, recvTimedOut:
			log.Printf("ws client %s disconnected with code %d: %s", c.id, res.code, res.reason)
			return
		default:
			log.Printf("ws client %s error: %v", c.id, res.err)
			return
		}
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	payload := StatusPayload{
		Crossfader:    s.value.Load(),
		Device:        s.device,
		Control:       s.control,
		Clients:       s.hub.ClientCount(),
		UptimeSeconds: s.clock.Since(s.started).Seconds(),
	}
	s.mu.RUnlock()

	if stats, err := processStats(r.Context()); err != nil {
		log.Printf("status: process stats unavailable: %v", err)
	} else {
		payload.Process = stats
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(payload)
}

func processStats(ctx context.Context) (*ProcessStats, error) {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil {
		return nil, err
	}
	cpu, err := p.CPUPercentWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return &ProcessStats{
		RSSBytes:   mem.RSS,
		CPUPercent: cpu,
		Goroutines: runtime.NumGoroutine(),
	}, nil
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	if len(s.allowedOrigins) > 0 {
		if s.allowedOrigins[origin] {
			return true
		}
		if parsed, err := url.Parse(origin); err == nil && parsed.Host != "" {
			return s.allowedHosts[parsed.Host]
		}
		return false
	}

	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := parsed.Host
	if host == "" {
		return false
	}
	if host == r.Host {
		return true
	}

	hostname := parsed.Hostname()
	return hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"
}

// Listen binds the server address so bind errors surface before anything
// else starts.
func Listen(host string, port int) (net.Listener, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve serves handler on ln until ctx is cancelled, then shuts the server
// down. Hijacked WebSocket connections are not waited for; they are closed
// with the process.
func Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
