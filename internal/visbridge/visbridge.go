// Package visbridge implements a persisted visualisation bridge: a
// read-only handle to current particle positions and orientations,
// exposed as an opaque callback invoked from the system ticker. The core
// never imports this package — a caller wires Bridge.Callback(store) as
// the onTick function of a sysevent.SystemTicker, and nothing breaks if
// that wiring is simply omitted.
//
// Grounded on niceyeti-tabular/server/server.go's websocket push loop:
// an http.Upgrader-backed handler registers a client, and updates are
// published onto it from a separate goroutine rather than inline with the
// event that produced them, so a slow or disconnected client can never
// block the simulation.
package visbridge

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 1 * time.Second
	closeGracePeriod = 5 * time.Second
)

// ParticlePose is one particle's read-only visual state at a tick.
type ParticlePose struct {
	ID int `json:"id"`
	Pos vecmath.Vec3 `json:"pos"`
	Orientation vecmath.Vec3 `json:"orientation,omitempty"`
}

// Frame is one ticker snapshot, broadcast verbatim to every connected
// client as JSON.
type Frame struct {
	Time float64 `json:"time"`
	Particles []ParticlePose `json:"particles"`
}

// Bridge serves a websocket endpoint that streams Frame snapshots to
// every connected client. The zero value is not usable; use New.
type Bridge struct {
	upgrader websocket.Upgrader

	mu sync.Mutex
	clients map[*websocket.Conn]chan Frame
}

// New returns an idle Bridge. Call Serve to start accepting connections
// and Callback to obtain the function to wire onto a system ticker.
func New() *Bridge {
	return &Bridge{clients: make(map[*websocket.Conn]chan Frame)}
}

// Handler returns the http.Handler that upgrades incoming requests to
// websocket connections and streams frames to them.
func (b *Bridge) Handler() http.Handler {
	return http.HandlerFunc(b.serveWebsocket)
}

func (b *Bridge) serveWebsocket(w http.ResponseWriter, r *http.Request) {
	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("visbridge: upgrade:", err)
		return
	}

	ch := make(chan Frame, 1)
	b.mu.Lock()
	b.clients[ws] = ch
	b.mu.Unlock()

	defer b.disconnect(ws)

	for frame := range ch {
		_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := ws.WriteJSON(frame); err != nil {
			return
		}
	}
}

func (b *Bridge) disconnect(ws *websocket.Conn) {
	b.mu.Lock()
	ch, ok := b.clients[ws]
	delete(b.clients, ws)
	b.mu.Unlock()
	if ok {
		close(ch)
	}

	_ = ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	ws.Close()
}

// Broadcast pushes frame to every currently connected client, dropping it
// for any client whose channel is still full rather than blocking — a
// slow visualiser must never stall the simulation it's observing.
func (b *Bridge) Broadcast(frame Frame) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.clients {
		select {
		case ch <- frame:
		default:
		}
	}
}

// Callback returns the onTick function that snapshots store and broadcasts it. Pass
// the result as the onTick argument to sysevent.NewSystemTicker.
func (b *Bridge) Callback(store *particle.Store) func(now float64) {
	return func(now float64) {
		all := store.All()
		poses := make([]ParticlePose, len(all))
		for i, p := range all {
			poses[i] = ParticlePose{ID: p.ID, Pos: p.Pos, Orientation: p.Orientation}
		}
		b.Broadcast(Frame{Time: now, Particles: poses})
	}
}

// marshal is exposed only for tests that want to check wire format
// without standing up a real websocket connection.
func marshal(f Frame) ([]byte, error) { return json.Marshal(f) }
