package hub

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const relayServerType = "hub"

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Peers are game servers, not browsers.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ClientInfo identifies a process connected to the relay.
type ClientInfo struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type peer struct {
	relay *Relay
	conn  *websocket.Conn
	info  ClientInfo
	send  chan []byte
}

// delivery is a frame queued for every peer except from, or only for to
// when set.
type delivery struct {
	from  *peer
	to    *peer
	frame []byte
}

// Relay is the broadcast hub itself. Every valid frame a peer sends is
// stamped with the sender identity and fanned out to all other peers.
type Relay struct {
	logger *zap.SugaredLogger
	apiKey string

	mu      sync.RWMutex
	clients map[*peer]bool

	register   chan *peer
	unregister chan *peer
	deliver    chan delivery
	done       chan struct{}

	now func() time.Time
}

// NewRelay creates a relay. An empty apiKey accepts every connection.
func NewRelay(logger *zap.SugaredLogger, apiKey string) *Relay {
	return &Relay{
		logger:     logger,
		apiKey:     apiKey,
		clients:    make(map[*peer]bool),
		register:   make(chan *peer),
		unregister: make(chan *peer),
		deliver:    make(chan delivery, sendBufferSize),
		done:       make(chan struct{}),
		now:        time.Now,
	}
}

// Run owns every peer send queue until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)

	for {
		select {
		case <-ctx.Done():
			r.mu.Lock()
			for p := range r.clients {
				delete(r.clients, p)
				close(p.send)
			}
			r.mu.Unlock()
			return
		case p := <-r.register:
			r.mu.Lock()
			r.clients[p] = true
			r.mu.Unlock()
			r.logger.Infow("hub client connected", "type", p.info.Type, "name", p.info.Name)
		case p := <-r.unregister:
			r.mu.Lock()
			if _, ok := r.clients[p]; ok {
				delete(r.clients, p)
				close(p.send)
				r.logger.Infow("hub client disconnected", "type", p.info.Type, "name", p.info.Name)
			}
			r.mu.Unlock()
		case d := <-r.deliver:
			r.mu.Lock()
			for p := range r.clients {
				if d.to != nil && p != d.to {
					continue
				}
				if d.from != nil && p == d.from {
					continue
				}
				select {
				case p.send <- d.frame:
				default:
					r.logger.Warnw("dropping slow hub client", "type", p.info.Type, "name", p.info.Name)
					close(p.send)
					delete(r.clients, p)
				}
			}
			r.mu.Unlock()
		}
	}
}

// Router exposes the relay over HTTP.
func (r *Relay) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/ws", r.ServeWs)
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "clients": len(r.Clients())})
	})
	return engine
}

// ListenAndServe serves the relay on port until ctx is cancelled.
func (r *Relay) ListenAndServe(ctx context.Context, port uint16) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			r.logger.Errorw("failed to shut down hub relay", "error", err)
		}
	}()

	r.logger.Infow("hub relay listening", "port", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeWs authenticates and upgrades a peer connection.
func (r *Relay) ServeWs(c *gin.Context) {
	if r.apiKey != "" && subtle.ConstantTimeCompare([]byte(c.Query("api_key")), []byte(r.apiKey)) != 1 {
		r.logger.Warnw("hub connection rejected: invalid api key", "remote", c.ClientIP())
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	info := ClientInfo{Type: c.Query("type"), Name: c.Query("name")}
	if info.Type == "" || info.Name == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "type and name are required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		r.logger.Warnw("hub upgrade failed", "error", err)
		return
	}

	p := &peer{relay: r, conn: conn, info: info, send: make(chan []byte, sendBufferSize)}
	if greeting, err := Encode(Connected{Message: "Connected as " + info.Name}, relayServerType, "", r.now()); err == nil {
		p.send <- greeting
	}

	select {
	case r.register <- p:
	case <-r.done:
		_ = conn.Close()
		return
	}

	go p.writePump()
	go p.readPump()
}

// Clients lists the connected peers ordered by name.
func (r *Relay) Clients() []ClientInfo {
	r.mu.RLock()
	out := make([]ClientInfo, 0, len(r.clients))
	for p := range r.clients {
		out = append(out, p.info)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Disconnect closes every connection registered under name and reports how
// many were closed.
func (r *Relay) Disconnect(name string) int {
	r.mu.RLock()
	var matched []*peer
	for p := range r.clients {
		if p.info.Name == name {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	for _, p := range matched {
		_ = p.conn.Close()
	}
	return len(matched)
}

func (r *Relay) queue(d delivery) {
	select {
	case r.deliver <- d:
	case <-r.done:
	}
}

func (p *peer) readPump() {
	defer func() {
		select {
		case p.relay.unregister <- p:
		case <-p.relay.done:
		}
		_ = p.conn.Close()
	}()

	p.conn.SetReadLimit(maxMessageSize)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, frame, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				p.relay.logger.Debugw("hub client read failed", "name", p.info.Name, "error", err)
			}
			return
		}
		_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
		p.handle(frame)
	}
}

func (p *peer) handle(frame []byte) {
	r := p.relay

	in, err := Decode(frame)
	if err == nil {
		frame, err = Encode(in.Message, p.info.Type, p.info.Name, r.now())
	}
	if err != nil {
		r.logger.Debugw("rejecting malformed hub frame", "name", p.info.Name, "error", err)
		reply, encErr := Encode(ErrorMessage{Message: err.Error()}, relayServerType, "", r.now())
		if encErr == nil {
			r.queue(delivery{to: p, frame: reply})
		}
		return
	}

	r.queue(delivery{from: p, frame: frame})
}

func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = p.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-p.send:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
