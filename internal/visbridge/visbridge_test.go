package visbridge

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameMarshalsParticlePositions(t *testing.T) {
	frame := Frame{Time: 1.5, Particles: []ParticlePose{{ID: 0, Pos: vecmath.Vec3{X: 1, Y: 2, Z: 3}}}}
	b, err := marshal(frame)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"time":1.5`)
	assert.Contains(t, string(b), `"id":0`)
}

func TestBridgeStreamsTickerCallbackToConnectedClient(t *testing.T) {
	b := New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	store := particle.NewStore()
	store.Add(vecmath.Vec3{X: 4, Y: 5, Z: 6}, vecmath.Vec3{}, particle.Dynamic|particle.Alive)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// Give the server goroutine a moment to register the client before
	// the first tick fires.
	time.Sleep(20 * time.Millisecond)

	cb := b.Callback(store)
	cb(2.0)

	var frame Frame
	conn.SetReadDeadline(time.Now().Add(time.Second))
	require.NoError(t, conn.ReadJSON(&frame))

	assert.InDelta(t, 2.0, frame.Time, 1e-9)
	require.Len(t, frame.Particles, 1)
	assert.InDelta(t, 4.0, frame.Particles[0].Pos.X, 1e-9)
}

func TestBridgeHandlerRejectsNonUpgradeRequests(t *testing.T) {
	b := New()
	srv := httptest.NewServer(b.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, http.StatusSwitchingProtocols, resp.StatusCode)
}
