// Package feed streams game events to spectators over websockets.
package feed

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/unoduel/internal/game"
)

// Hub fans engine events out to every connected spectator. It is a
// game.EventSubscriber and never blocks the publisher.
type Hub struct {
	gameID    string
	formatter *game.EventFormatter
	upgrader  websocket.Upgrader
	logger    *log.Logger

	register   chan *client
	unregister chan *client
	done       chan struct{}

	mu      sync.RWMutex
	clients map[*client]bool
}

// NewHub creates a hub for one game. Machine draws are never revealed.
func NewHub(gameID string, names game.FormattingOptions, logger *log.Logger) *Hub {
	names.ShowMachineCards = false
	return &Hub{
		gameID:    gameID,
		formatter: game.NewEventFormatter(names),
		upgrader: websocket.Upgrader{
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:     logger.WithPrefix("feed"),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		clients:    make(map[*client]bool),
	}
}

// Run tracks connections until ctx is cancelled, then disconnects everyone.
// It must only be called once.
func (h *Hub) Run(ctx context.Context) error {
	defer close(h.done)
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("Spectator connected", "total", total)

		case c := <-h.unregister:
			h.mu.Lock()
			delete(h.clients, c)
			total := len(h.clients)
			h.mu.Unlock()
			c.close()
			h.logger.Info("Spectator disconnected", "total", total)

		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return nil
		}
	}
}

// Clients returns the number of connected spectators
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// OnEvent implements game.EventSubscriber
func (h *Hub) OnEvent(event game.GameEvent) {
	h.Broadcast(NewMessage(h.gameID, event, h.formatter))
}

// Broadcast queues msg for every spectator
func (h *Hub) Broadcast(msg *Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		c.enqueue(msg)
	}
}

// Handler serves /ws and /health
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWebSocket)
	mux.HandleFunc("/health", h.handleHealth)
	return mux
}

func (h *Hub) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	c := newClient(conn, h.logger)
	select {
	case h.register <- c:
	case <-h.done:
		c.close()
		return
	}
	c.start()

	go func() {
		<-c.ctx.Done()
		select {
		case h.unregister <- c:
		case <-h.done:
		}
	}()
}

func (h *Hub) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// Serve runs the hub and an HTTP server on addr until ctx is cancelled
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() { _ = h.Run(ctx) }()

	errc := make(chan error, 1)
	go func() {
		h.logger.Info("Spectator feed listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		cancel()
		<-h.done
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("spectator feed on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	err := srv.Shutdown(shutdownCtx)
	<-h.done
	return err
}
