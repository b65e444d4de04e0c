// Package server exposes controller sessions over a websocket, plus health
// and Prometheus endpoints.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vladimiradmaev/nutriscan/internal/app"
	"github.com/vladimiradmaev/nutriscan/internal/capture"
	"github.com/vladimiradmaev/nutriscan/internal/storage"
)

const (
	writeTimeout    = 10 * time.Second
	shutdownTimeout = 5 * time.Second
	maxMessageBytes = 16 << 20

	// Commands a client may queue while one is running.
	messageQueueSize = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server hands every websocket connection its own controller session.
type Server struct {
	app      *app.App
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	active   atomic.Int64
}

// New creates a server. gatherer backs /metrics; the default registry is
// used when nil.
func New(a *app.App, gatherer prometheus.Gatherer) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		app:      a,
		gatherer: gatherer,
		logger:   a.Logger.With("component", "server"),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.active.Load(),
	})
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageBytes)

	clientID := r.URL.Query().Get("client")
	if clientID == "" {
		clientID = uuid.New().String()
	}
	log := s.logger.With("client", clientID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	frames := capture.NewFrameDevice()
	sess := s.app.NewSession(ctx, storage.ClientPrefix(clientID), frames)
	c := &client{conn: conn, sess: sess, frames: frames, logger: log}

	s.app.Metrics.SetActiveSessions(int(s.active.Add(1)))
	log.Info("Client connected")

	queue := make(chan clientMessage, messageQueueSize)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.process(ctx, queue)
	}()
	defer func() {
		close(queue)
		cancel()
		wg.Wait()
		sess.Controller.Close()
		s.app.Metrics.SetActiveSessions(int(s.active.Add(-1)))
		log.Info("Client disconnected")
	}()

	unsubscribe := sess.Controller.Subscribe(c.pushState)
	defer unsubscribe()
	c.pushState(sess.Controller.Snapshot())

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				c.sendError("Invalid message format", "")
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn("Error reading message", "error", err)
			}
			return
		}

		select {
		case queue <- msg:
		case <-ctx.Done():
			return
		}
	}
}
