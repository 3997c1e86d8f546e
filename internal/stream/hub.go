// Package stream pushes globe frames to browsers over WebSocket.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/signalsfoundry/globe-quiz/internal/globe"
	"github.com/signalsfoundry/globe-quiz/internal/logging"
)

// MessageType tags every message written to clients.
const MessageType = "FRAME"

const (
	clientBuffer       = 16
	writeTimeout       = 5 * time.Second
	defaultReadTimeout = 60 * time.Second
)

// Rotation is the wire form of core.RotationState.
type Rotation struct {
	AxisTilt float64 `json:"axis_tilt"`
	Yaw      float64 `json:"yaw"`
	Pitch    float64 `json:"pitch"`
}

// Front names the settled front-facing country.
type Front struct {
	CountryID string  `json:"country_id"`
	Name      string  `json:"name"`
	NameJa    string  `json:"name_ja,omitempty"`
	Score     float64 `json:"score"`
}

// FrameMessage is one globe frame as seen by browsers.
type FrameMessage struct {
	Type     string   `json:"type"`
	Time     string   `json:"time"`
	Rotation Rotation `json:"rotation"`
	Moving   bool     `json:"moving"`
	Settled  bool     `json:"settled"`
	Front    *Front   `json:"front,omitempty"`
}

// NewFrameMessage converts a driver frame.
func NewFrameMessage(f globe.Frame) FrameMessage {
	msg := FrameMessage{
		Type: MessageType,
		Time: f.Time.UTC().Format(time.RFC3339Nano),
		Rotation: Rotation{
			AxisTilt: f.Rotation.AxisTilt,
			Yaw:      f.Rotation.Yaw,
			Pitch:    f.Rotation.Pitch,
		},
		Moving:  f.Moving,
		Settled: f.Settled,
	}
	if f.Settled && f.Front.Found {
		msg.Front = &Front{
			CountryID: f.Front.CountryID,
			Name:      f.Country.Name,
			NameJa:    f.Country.NameJa,
			Score:     f.Front.Score,
		}
	}
	return msg
}

// ClientRecorder receives the number of connected clients.
type ClientRecorder interface {
	SetStreamClients(n int)
}

// Hub fans frames out to every connected WebSocket client. Slow clients
// drop frames rather than stall the publisher.
type Hub struct {
	log         logging.Logger
	metrics     ClientRecorder
	upgrader    websocket.Upgrader
	minInterval time.Duration
	readTimeout time.Duration

	nextID atomic.Uint64

	mu          sync.Mutex
	clients     map[uint64]chan []byte
	last        []byte
	lastSent    time.Time
	lastSettled bool
}

// Option customises a Hub.
type Option func(*Hub)

// WithLogger attaches a structured logger.
func WithLogger(l logging.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithClientRecorder reports client counts.
func WithClientRecorder(r ClientRecorder) Option {
	return func(h *Hub) { h.metrics = r }
}

// WithMinInterval drops frames published closer together than d in frame
// time. Frames that change the settled state are always sent.
func WithMinInterval(d time.Duration) Option {
	return func(h *Hub) { h.minInterval = d }
}

// WithReadTimeout sets how long a client may stay silent, pongs included,
// before it is dropped. Pings go out at half that interval.
func WithReadTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.readTimeout = d
		}
	}
}

// WithCheckOrigin overrides the upgrader origin check. The default accepts
// every origin.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(h *Hub) { h.upgrader.CheckOrigin = fn }
}

// NewHub builds an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		log:         logging.Noop(),
		readTimeout: defaultReadTimeout,
		clients:     make(map[uint64]chan []byte),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Publish encodes f and queues it for every client. It never blocks.
func (h *Hub) Publish(f globe.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()

	settledChanged := f.Settled != h.lastSettled
	if !settledChanged && h.minInterval > 0 && !h.lastSent.IsZero() && f.Time.Sub(h.lastSent) < h.minInterval {
		return
	}

	b, err := json.Marshal(NewFrameMessage(f))
	if err != nil {
		h.log.Warn(context.Background(), "encode frame failed", logging.Err(err))
		return
	}
	h.last = b
	h.lastSent = f.Time
	h.lastSettled = f.Settled

	for _, ch := range h.clients {
		select {
		case ch <- b:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register() (uint64, chan []byte) {
	id := h.nextID.Add(1)
	ch := make(chan []byte, clientBuffer)

	h.mu.Lock()
	h.clients[id] = ch
	if h.last != nil {
		ch <- h.last
	}
	n := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetStreamClients(n)
	}
	return id, ch
}

func (h *Hub) unregister(id uint64) {
	h.mu.Lock()
	delete(h.clients, id)
	n := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.SetStreamClients(n)
	}
}

// Handler upgrades the request and streams frames until the client goes
// away. The most recent frame is sent immediately on connect.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			h.log.Debug(r.Context(), "websocket upgrade failed", logging.Err(err))
			return
		}
		defer conn.Close()

		id, out := h.register()
		defer h.unregister(id)
		h.log.Info(r.Context(), "stream client connected",
			logging.String("remote", r.RemoteAddr),
			logging.Int("clients", h.ClientCount()),
		)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine; also keeps passive viewers alive with pings.
		writeErr := make(chan error, 1)
		go func() {
			ping := time.NewTicker(h.readTimeout / 2)
			defer ping.Stop()
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case <-ping.C:
					if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
						writeErr <- err
						cancel()
						return
					}
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop: clients send nothing meaningful; reading surfaces
		// close frames, pongs and dead peers.
		_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			_ = conn.SetReadDeadline(time.Now().Add(h.readTimeout))
		}

		cancel()
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))

		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
		h.log.Info(r.Context(), "stream client disconnected", logging.String("remote", r.RemoteAddr))
	}
}
