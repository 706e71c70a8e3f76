package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guidoenr/glitchbg/internal/params"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	shutdownWait   = 5 * time.Second
	statusInterval = 500 * time.Millisecond
)

// Source is the running host the server reports on.
type Source interface {
	Snapshot() params.Block
	Parameters() params.Parameters
	Status() Status
}

// Status is the host state shown to clients.
type Status struct {
	FPS      float64 `json:"fps"`
	Backend  string  `json:"backend"`
	Palette  string  `json:"palette"`
	Quality  string  `json:"quality"`
	Image    string  `json:"image,omitempty"`
	Backdrop string  `json:"backdrop,omitempty"`
	Ticks    uint64  `json:"ticks"`
	Clients  int     `json:"clients"`
}

// Message is the websocket envelope. Type is "block" or "status".
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Server streams parameter blocks and status to browser clients.
type Server struct {
	mu        sync.Mutex
	source    Source
	log       *log.Logger
	clients   map[*websocketClient]bool
	broadcast chan []byte
	upgrader  websocket.Upgrader
	webDir    string
}

type websocketClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *Server
}

// NewServer creates a server reading from source.
func NewServer(source Source, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{
		source:    source,
		log:       logger,
		clients:   make(map[*websocketClient]bool),
		broadcast: make(chan []byte, 256),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		webDir: findWebDir(),
	}
}

func findWebDir() string {
	if _, err := os.Stat("web/index.html"); err == nil {
		return "web"
	}
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		for _, dir := range []string{exeDir, filepath.Dir(exeDir)} {
			webPath := filepath.Join(dir, "web")
			if _, err := os.Stat(filepath.Join(webPath, "index.html")); err == nil {
				return webPath
			}
		}
	}
	return ""
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/params", s.handleParams)
	mux.HandleFunc("/api/block", s.handleBlock)
	mux.HandleFunc("/api/image", s.handleImage)
	mux.HandleFunc("/ws", s.handleWebSocket)
	if s.webDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.webDir)))
	}
	return mux
}

// Start serves on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.Handler(),
	}

	go s.broadcastLoop(ctx)
	go s.statusUpdateLoop(ctx, statusInterval)

	errCh := make(chan error, 1)
	go func() {
		s.log.Printf("web: listening on http://0.0.0.0%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("web server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWait)
	defer cancel()
	s.closeClients()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("web shutdown: %w", err)
	}
	return nil
}

// Publish queues a block for every connected client. It never blocks; the
// block is dropped when the queue is full.
func (s *Server) Publish(b params.Block) {
	s.enqueue(Message{Type: "block", Data: b})
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) enqueue(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		s.log.Printf("web: encode %s: %v", msg.Type, err)
		return
	}
	select {
	case s.broadcast <- data:
	default:
	}
}

func (s *Server) status() Status {
	st := s.source.Status()
	st.Clients = s.ClientCount()
	return st
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.status())
}

func (s *Server) handleParams(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.source.Parameters())
}

func (s *Server) handleBlock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.source.Snapshot())
}

// handleImage serves the background file so browser clients can run the
// transform themselves.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	path := s.source.Status().Image
	if path == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, path)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	client := &websocketClient{
		conn:   conn,
		send:   make(chan []byte, 64),
		server: s,
	}

	s.mu.Lock()
	s.clients[client] = true
	s.mu.Unlock()

	go client.writePump()
	go client.readPump()
}

// removeClient drops c and closes its queue exactly once.
func (s *Server) removeClient(c *websocketClient) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clients[c] {
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for client := range s.clients {
		delete(s.clients, client)
		close(client.send)
	}
}

func (s *Server) broadcastLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case message := <-s.broadcast:
			s.mu.Lock()
			for client := range s.clients {
				select {
				case client.send <- message:
				default:
					// slow client
					delete(s.clients, client)
					close(client.send)
				}
			}
			s.mu.Unlock()
		}
	}
}

func (s *Server) statusUpdateLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.enqueue(Message{Type: "status", Data: s.status()})
		}
	}
}

func (c *websocketClient) readPump() {
	defer func() {
		c.server.removeClient(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *websocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
