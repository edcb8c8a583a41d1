// ABOUTME: WebSocket round-trip tests for the remote control server
package netctl

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vectoraudio/spatialengine/pkg/engine"
	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

type fakeController struct {
	mu         sync.Mutex
	playedID   uint64
	playedLoop playback.LoopMode
	pausedID   uint64
	stoppedID  uint64
	pose       spatial.Pose
	failPlay   bool

	events []engine.Event
}

func (f *fakeController) Play(id uint64, loop playback.LoopMode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPlay {
		return errors.New("fakeController: play rejected")
	}
	f.playedID, f.playedLoop = id, loop
	return nil
}

func (f *fakeController) Pause(id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pausedID = id
	return nil
}

func (f *fakeController) Stop(id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stoppedID = id
	return nil
}

func (f *fakeController) Unregister(id uint64) error { return nil }

func (f *fakeController) SetSourceConfig(id uint64, cfg playback.Config) error { return nil }

func (f *fakeController) SetListenerPose(pose spatial.Pose) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pose = pose
}

func (f *fakeController) PollEvents() []engine.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.events
	f.events = nil
	return out
}

func (f *fakeController) pushEvent(ev engine.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func dialTestServer(t *testing.T, s *Server) (*websocket.Conn, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(s.mux)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/control"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn, ts
}

func sendMessage(t *testing.T, conn *websocket.Conn, typ string, payload interface{}) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	if err := conn.WriteJSON(Message{Type: typ, Payload: raw}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestPlayRequestInvokesController(t *testing.T) {
	ctrl := &fakeController{}
	s := NewServer(ServerConfig{}, ctrl)
	conn, ts := dialTestServer(t, s)
	defer ts.Close()
	defer conn.Close()

	sendMessage(t, conn, "play", PlayRequest{ID: 7, Loop: "infinite"})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ctrl.mu.Lock()
		got := ctrl.playedID
		ctrl.mu.Unlock()
		if got == 7 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("controller.Play was not invoked with id 7")
}

func TestPlayRequestFailureReturnsErrorMessage(t *testing.T) {
	ctrl := &fakeController{failPlay: true}
	s := NewServer(ServerConfig{}, ctrl)
	conn, ts := dialTestServer(t, s)
	defer ts.Close()
	defer conn.Close()

	sendMessage(t, conn, "play", PlayRequest{ID: 1, Loop: "once"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "error" {
		t.Fatalf("expected error message, got type %q", msg.Type)
	}
}

func TestSetListenerPoseForwardsToController(t *testing.T) {
	ctrl := &fakeController{}
	s := NewServer(ServerConfig{}, ctrl)
	conn, ts := dialTestServer(t, s)
	defer ts.Close()
	defer conn.Close()

	sendMessage(t, conn, "set_listener_pose", SetListenerPoseRequest{
		Pose: Pose{Position: [3]float32{1, 2, 3}, Orientation: [4]float32{0, 0, 0, 1}},
	})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ctrl.mu.Lock()
		pos := ctrl.pose.Position
		ctrl.mu.Unlock()
		if pos.X == 1 && pos.Y == 2 && pos.Z == 3 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("SetListenerPose was not forwarded")
}

func TestBroadcastDeliversEventToClient(t *testing.T) {
	ctrl := &fakeController{}
	s := NewServer(ServerConfig{}, ctrl)
	conn, ts := dialTestServer(t, s)
	defer ts.Close()
	defer conn.Close()

	// Give handleWebSocket a moment to register the client before broadcasting.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && len(s.Clients()) == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	if len(s.Clients()) == 0 {
		t.Fatal("client never registered")
	}

	ctrl.pushEvent(engine.SourceStartedEvent{ID: 42})
	s.pollAndBroadcastOnce()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if msg.Type != "event" {
		t.Fatalf("expected event message, got type %q", msg.Type)
	}
	var ev EventMessage
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		t.Fatalf("unmarshal event envelope: %v", err)
	}
	if ev.Kind != "SourceStarted" {
		t.Fatalf("expected SourceStarted, got %q", ev.Kind)
	}
}
