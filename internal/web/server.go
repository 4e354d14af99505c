package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/guzus/relay/internal/config"
	"github.com/guzus/relay/internal/dispatch"
	"github.com/guzus/relay/internal/logger"
)

const (
	shutdownTimeout = 5 * time.Second
	// maxCommandsPerConn bounds the animations one page can keep running.
	maxCommandsPerConn = 3
)

var errTooManyCommands = fmt.Errorf("too many commands running on this connection (max %d)", maxCommandsPerConn)

// Server is the websocket transport. Each connection is a chat: clients
// send command lines and receive the frames and replies they produce.
type Server struct {
	addr       string
	token      string
	dispatcher *dispatch.Dispatcher
	log        logger.Logger
	upgrader   websocket.Upgrader

	mu    sync.Mutex
	conns map[*conn]struct{}
}

func New(cfg config.Web, d *dispatch.Dispatcher, log logger.Logger) (*Server, error) {
	if cfg.Addr == "" {
		return nil, errors.New("web address is empty")
	}
	token, generated, err := ensureToken(cfg.Token)
	if err != nil {
		return nil, err
	}

	s := &Server{
		addr:       cfg.Addr,
		token:      token,
		dispatcher: d,
		log:        log.With("transport", "web"),
		conns:      make(map[*conn]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			// The token gates access; browsers may connect from any origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	if generated {
		s.log.Info("Generated an access token for this run")
	}
	return s, nil
}

// AccessURL is the page address including the token.
func (s *Server) AccessURL() string {
	return accessURL(s.addr, s.token)
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok")
	})
	r.Group(func(r chi.Router) {
		r.Use(s.requireToken)
		r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = io.WriteString(w, pageHTML)
		})
		r.Get("/ws", s.serveWS)
	})
	return r
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isAuthorized(r, s.token) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Run serves until ctx is done, then closes every open connection.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	// Shutdown does not touch hijacked connections.
	server.RegisterOnShutdown(s.closeAll)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	s.log.Info("Listening", "addr", s.addr, "url", s.AccessURL())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving %s: %w", s.addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("Websocket upgrade failed", "err", err)
		return
	}
	c := newConn(ws)
	s.track(c)
	defer s.untrack(c)
	defer c.close()

	id := uuid.NewString()
	log := s.log.With("conn", id, "request", middleware.GetReqID(r.Context()))
	log.Debug("Client connected", "remote", r.RemoteAddr)

	var n int
	for {
		var in clientMessage
		if err := ws.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("Client read failed", "err", err)
			}
			log.Debug("Client disconnected")
			return
		}
		if in.Type != typeCommand {
			continue
		}

		n++
		prefix := "web:" + id + ":"
		key := prefix + strconv.Itoa(n)
		msg := &message{conn: c, id: key, text: in.Data}
		err := errTooManyCommands
		if s.dispatcher.ActiveWithPrefix(prefix) < maxCommandsPerConn {
			err = s.dispatcher.Dispatch(key, msg)
		}
		if err != nil {
			if errors.Is(err, dispatch.ErrNoCommand) {
				err = fmt.Errorf("unknown command %q", in.Data)
			}
			log.Debug("Command not started", "err", err)
			_ = c.send(context.Background(), serverMessage{Type: typeError, ID: key, Data: err.Error()})
		}
	}
}

func (s *Server) track(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[c] = struct{}{}
}

func (s *Server) untrack(c *conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, c)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.conns {
		c.close()
	}
}
