// Package telemetry broadcasts per-frame readouts to WebSocket clients.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var errHubClosed = errors.New("telemetry hub is closed")

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// hub is the implementation of the Hub interface.
type hub struct {
	logger       *zap.Logger
	upgrader     websocket.Upgrader
	writeTimeout time.Duration

	mu      sync.RWMutex
	clients map[*websocket.Conn]*client
	closed  bool
	server  *http.Server
}

// Hub fans readouts out to every connected WebSocket client as JSON text messages.
// A client whose write fails is closed and dropped. Hub is safe for concurrent use.
type Hub interface {
	http.Handler

	// Publish marshals v once and writes it to every connected client.
	//
	// Parameters:
	//   - v: the value to send, usually a kinematics.Readouts
	//
	// Returns:
	//   - error: a marshal error, or errHubClosed after Close; failed clients are not errors
	Publish(v any) error

	// Clients returns the number of connected clients.
	Clients() int

	// ListenAndServe serves the hub on addr until ctx is cancelled or Close is called.
	//
	// Parameters:
	//   - ctx: the context bounding the server's lifetime
	//   - addr: the TCP address to listen on
	//
	// Returns:
	//   - error: the listener error, or nil on a clean shutdown
	ListenAndServe(ctx context.Context, addr string) error

	// Close disconnects every client and stops the server if one is running.
	Close() error
}

var _ Hub = &hub{}

// NewHub creates a new Hub with the provided options applied.
//
// Parameters:
//   - options: a variadic list of HubBuilderOption functions to configure the Hub
//
// Returns:
//   - Hub: the new hub
func NewHub(options ...HubBuilderOption) Hub {
	h := &hub{
		logger:       zap.NewNop(),
		writeTimeout: time.Second,
		clients:      make(map[*websocket.Conn]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (h *hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[conn] = &client{conn: conn}
	h.mu.Unlock()
	h.logger.Debug("telemetry client connected", zap.String("remote", conn.RemoteAddr().String()))

	// Clients only listen; reading detects the disconnect.
	go func() {
		for {
			if _, _, err := conn.NextReader(); err != nil {
				h.drop(conn)
				return
			}
		}
	}()
}

func (h *hub) Publish(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode telemetry: %w", err)
	}

	h.mu.RLock()
	if h.closed {
		h.mu.RUnlock()
		return errHubClosed
	}
	var failed []*websocket.Conn
	for conn, c := range h.clients {
		c.mu.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		err := conn.WriteMessage(websocket.TextMessage, payload)
		c.mu.Unlock()
		if err != nil {
			h.logger.Debug("telemetry write failed", zap.Error(err))
			failed = append(failed, conn)
		}
	}
	h.mu.RUnlock()

	for _, conn := range failed {
		h.drop(conn)
	}
	return nil
}

func (h *hub) drop(conn *websocket.Conn) {
	h.mu.Lock()
	_, ok := h.clients[conn]
	delete(h.clients, conn)
	h.mu.Unlock()
	if ok {
		_ = conn.Close()
	}
}

func (h *hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *hub) ListenAndServe(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/telemetry", h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return errHubClosed
	}
	h.server = srv
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	h.logger.Info("telemetry listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("telemetry server failed: %w", err)
	}
	return nil
}

func (h *hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	conns := h.clients
	h.clients = make(map[*websocket.Conn]*client)
	srv := h.server
	h.mu.Unlock()

	for conn := range conns {
		_ = conn.Close()
	}
	if srv != nil {
		return srv.Close()
	}
	return nil
}
