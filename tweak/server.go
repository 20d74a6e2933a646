package tweak

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	pingPeriod = 30 * time.Second
	writeWait  = 40 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) writePump(h *hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.unregister(c)
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("[tweak] ws write msg error: %v", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[tweak] ws write ping error: %v", err)
				return
			}
		}
	}
}

// readPump discards whatever the client sends; edits come in over PUT. It returns once the connection drops.
func (c *client) readPump(h *hub) {
	defer h.unregister(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

type hub struct {
	mu      sync.Mutex
	clients map[*client]bool
}

func newHub() *hub {
	return &hub{clients: map[*client]bool{}}
}

// register adds a client and queues first as its first message.
func (h *hub) register(c *client, first []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
	c.send <- first
}

func (h *hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		c.close()
	}
}

// broadcast queues data for every client. Clients too far behind to take it are dropped.
func (h *hub) broadcast(data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			log.Printf("[tweak] Warning: dropping slow client %v", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[tweak] Error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Handler returns the panel's HTTP API:
//
//	GET /api/controls                  every control
//	GET /api/controls/{folder}/{name}  one control
//	PUT /api/controls/{folder}/{name}  queue an edit; body is {"value": ...}
//	GET /api/ws                        websocket pushing control values as they change
func (panel *Panel) Handler() http.Handler {

	r := mux.NewRouter()

	r.HandleFunc("/api/controls", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, panel.Controls())
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/controls/{folder}/{name}", func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)
		s, ok := panel.Control(vars["folder"], vars["name"])
		if !ok {
			writeError(w, http.StatusNotFound, errors.Wrapf(ErrUnknownControl, "%s/%s", vars["folder"], vars["name"]))
			return
		}
		writeJSON(w, http.StatusOK, s)
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/controls/{folder}/{name}", func(w http.ResponseWriter, req *http.Request) {
		vars := mux.Vars(req)

		var body struct {
			Value any `json:"value"`
		}
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, errors.Wrap(err, "decoding body"))
			return
		}

		if err := panel.Set(vars["folder"], vars["name"], body.Value); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrUnknownControl) {
				status = http.StatusNotFound
			}
			writeError(w, status, err)
			return
		}

		w.WriteHeader(http.StatusAccepted)
	}).Methods(http.MethodPut)

	r.HandleFunc("/api/ws", func(w http.ResponseWriter, req *http.Request) {
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Printf("[tweak] ws upgrade error: %v", err)
			return
		}

		first, err := json.Marshal(message{Type: "controls", Controls: panel.Controls()})
		if err != nil {
			log.Printf("[tweak] Error encoding controls: %v", err)
			conn.Close()
			return
		}

		c := &client{conn: conn, send: make(chan []byte, 32)}
		panel.hub.register(c, first)
		go c.writePump(panel.hub)
		go c.readPump(panel.hub)
	})

	return handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stdout, r))

}

// Server serves a Panel over HTTP.
type Server struct {
	panel  *Panel
	server *http.Server
	addr   net.Addr
}

// Serve starts serving the panel on addr in the background.
func (panel *Panel) Serve(addr string) (*Server, error) {

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "tweak: listening on %s", addr)
	}

	s := &Server{
		panel:  panel,
		server: &http.Server{Handler: panel.Handler(), ReadHeaderTimeout: 10 * time.Second},
		addr:   listener.Addr(),
	}

	log.Printf("[tweak] Starting server %v", s.addr)

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("[tweak] Error serving: %v", err)
		}
	}()

	return s, nil

}

// Addr returns the address the server is listening on.
func (s *Server) Addr() net.Addr {
	return s.addr
}

// Close disconnects websocket clients and shuts the server down.
func (s *Server) Close(ctx context.Context) error {
	s.panel.hub.closeAll()
	return s.server.Shutdown(ctx)
}
