// Package notifiers streams simulator events to external consumers.
package notifiers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/ecosys/game"
	"github.com/pthm-cable/ecosys/systems"
	"github.com/pthm-cable/ecosys/traits"
)

// Frame kinds.
const (
	FrameRegister = "register"
	FrameReset    = "reset"
	FrameRegion   = "region"
	FrameAdded    = "added"
	FrameAdvanced = "advanced"
)

// Frame is one message sent to every client.
type Frame struct {
	Run        string            `json:"run"`
	Kind       string            `json:"kind"`
	Time       float64           `json:"time"`
	DT         float64           `json:"dt,omitempty"`
	Herbivores int               `json:"herbivores"`
	Carnivores int               `json:"carnivores"`
	Animals    []game.AnimalInfo `json:"animals,omitempty"`
	Animal     *game.AnimalInfo  `json:"animal,omitempty"` // the newcomer of an added frame

	Row    int                 `json:"row,omitempty"`
	Col    int                 `json:"col,omitempty"`
	Region *systems.RegionInfo `json:"region,omitempty"`
}

// WebSocketObserver is a simulator observer that pushes frames to
// WebSocket clients. It is also the http.Handler clients connect to.
// Frames are queued; when the queue is full new frames are dropped so a
// slow client never stalls the simulation.
type WebSocketObserver struct {
	game.NopObserver

	runID      string
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan Frame
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	dropped    atomic.Int64
}

// NewWebSocketObserver creates an observer tagging frames with runID.
// queue is the number of frames buffered for the broadcaster.
func NewWebSocketObserver(runID string, queue int) *WebSocketObserver {
	if queue <= 0 {
		queue = 256
	}
	o := &WebSocketObserver{
		runID:      runID,
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Frame, queue),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}

	o.wg.Add(1)
	go o.run()

	return o
}

// OnRegister sends the initial state.
func (o *WebSocketObserver) OnRegister(time float64, _ game.MapInfo, animals []game.AnimalInfo) {
	o.enqueue(o.frame(FrameRegister, time, animals))
}

// OnReset announces an emptied world.
func (o *WebSocketObserver) OnReset(time float64, _ game.MapInfo, animals []game.AnimalInfo) {
	o.enqueue(o.frame(FrameReset, time, animals))
}

// OnAnimalAdded announces a placed or newborn animal. The frame carries the
// newcomer and the updated counts but not the full animal list.
func (o *WebSocketObserver) OnAnimalAdded(time float64, _ game.MapInfo, animals []game.AnimalInfo, a game.AnimalInfo) {
	f := o.frame(FrameAdded, time, animals)
	f.Animals = nil
	f.Animal = &a
	o.enqueue(f)
}

// OnRegionSet announces a replaced region.
func (o *WebSocketObserver) OnRegionSet(row, col int, _ game.MapInfo, r systems.RegionInfo) {
	o.enqueue(Frame{Run: o.runID, Kind: FrameRegion, Row: row, Col: col, Region: &r})
}

// OnAdvanced sends the state after a step.
func (o *WebSocketObserver) OnAdvanced(time float64, _ game.MapInfo, animals []game.AnimalInfo, dt float64) {
	f := o.frame(FrameAdvanced, time, animals)
	f.DT = dt
	o.enqueue(f)
}

func (o *WebSocketObserver) frame(kind string, time float64, animals []game.AnimalInfo) Frame {
	f := Frame{Run: o.runID, Kind: kind, Time: time, Animals: animals}
	for _, a := range animals {
		if a.State == traits.Dead {
			continue
		}
		if a.Diet == traits.Herbivore {
			f.Herbivores++
		} else {
			f.Carnivores++
		}
	}
	return f
}

func (o *WebSocketObserver) enqueue(f Frame) {
	select {
	case <-o.done:
		return
	default:
	}
	select {
	case o.broadcast <- f:
	default:
		o.dropped.Add(1)
	}
}

// Dropped returns the number of frames discarded because the queue was full.
func (o *WebSocketObserver) Dropped() int64 {
	return o.dropped.Load()
}

// Clients returns the number of connected clients.
func (o *WebSocketObserver) Clients() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.clients)
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects.
func (o *WebSocketObserver) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := o.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}

	select {
	case o.register <- conn:
	case <-o.done:
		conn.Close()
		return
	}

	// Clients only listen; reading detects the disconnect.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case o.unregister <- conn:
	case <-o.done:
	}
}

// run handles client registration and message broadcasting.
func (o *WebSocketObserver) run() {
	defer o.wg.Done()
	for {
		select {
		case <-o.done:
			return

		case conn := <-o.register:
			o.mu.Lock()
			o.clients[conn] = true
			o.mu.Unlock()

		case conn := <-o.unregister:
			o.mu.Lock()
			if _, ok := o.clients[conn]; ok {
				delete(o.clients, conn)
				conn.Close()
			}
			o.mu.Unlock()

		case f := <-o.broadcast:
			data, err := json.Marshal(f)
			if err != nil {
				slog.Error("failed to encode frame", "error", err)
				continue
			}

			o.mu.RLock()
			conns := make([]*websocket.Conn, 0, len(o.clients))
			for conn := range o.clients {
				conns = append(conns, conn)
			}
			o.mu.RUnlock()

			var failed []*websocket.Conn
			for _, conn := range conns {
				conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
					failed = append(failed, conn)
					conn.Close()
				}
			}

			if len(failed) > 0 {
				o.mu.Lock()
				for _, conn := range failed {
					delete(o.clients, conn)
				}
				o.mu.Unlock()
			}
		}
	}
}

// Close disconnects every client and stops the broadcaster. Frames still
// queued are discarded.
func (o *WebSocketObserver) Close() error {
	o.closeOnce.Do(func() {
		close(o.done)
		o.wg.Wait()

		o.mu.Lock()
		for conn := range o.clients {
			conn.Close()
			delete(o.clients, conn)
		}
		o.mu.Unlock()
	})
	return nil
}
