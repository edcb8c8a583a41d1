// ABOUTME: WebSocket remote control server mirroring World's command/event surface
// ABOUTME: Same upgrade/broadcast/shutdown shape as a typical gorilla/websocket hub, control instead of streaming

package netctl

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vectoraudio/spatialengine/pkg/engine"
	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

// Controller is the subset of World's facade the remote control surface
// drives. engine.World satisfies it directly.
type Controller interface {
	Play(id uint64, loop playback.LoopMode) error
	Pause(id uint64) error
	Stop(id uint64) error
	Unregister(id uint64) error
	SetSourceConfig(id uint64, cfg playback.Config) error
	SetListenerPose(pose spatial.Pose)
	PollEvents() []engine.Event
}

// ServerConfig configures a remote control Server.
type ServerConfig struct {
	Addr       string // listen address, e.g. ":7711"
	Name       string // advertised service name
	EnableMDNS bool
	// EventPollInterval controls how often queued events are broadcast to
	// connected clients. Defaults to 20ms.
	EventPollInterval time.Duration
}

// Server is the WebSocket control-plane front end for a Controller.
type Server struct {
	cfg        ServerConfig
	controller Controller

	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server

	clients   map[string]*wsClient
	clientsMu sync.RWMutex

	mdns *mdnsAdvertiser

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// NewServer builds a Server driving controller. It does not start listening
// until Start is called.
func NewServer(cfg ServerConfig, controller Controller) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":7711"
	}
	if cfg.Name == "" {
		cfg.Name = "spatialrt"
	}
	if cfg.EventPollInterval <= 0 {
		cfg.EventPollInterval = 20 * time.Millisecond
	}

	mux := http.NewServeMux()
	s := &Server{
		cfg:        cfg,
		controller: controller,
		mux:        mux,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[string]*wsClient),
		stopChan: make(chan struct{}),
	}
	mux.HandleFunc("/control", s.handleWebSocket)
	return s
}

// Start begins serving. It blocks until Stop is called or the HTTP server
// fails to start.
func (s *Server) Start() error {
	log.Printf("netctl: control server starting on %s", s.cfg.Addr)

	if s.cfg.EnableMDNS {
		adv, err := newMDNSAdvertiser(s.cfg.Name, s.cfg.Addr)
		if err != nil {
			log.Printf("netctl: mDNS advertisement failed to start: %v", err)
		} else {
			s.mdns = adv
		}
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.broadcastLoop()
	}()

	s.httpServer = &http.Server{Addr: s.cfg.Addr, Handler: s.mux}

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-s.stopChan:
		log.Printf("netctl: control server shutting down")
	case err := <-errChan:
		return err
	}

	if s.mdns != nil {
		s.mdns.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Printf("netctl: http server shutdown error: %v", err)
	}
	// Shutdown does not touch hijacked WebSocket connections; close them so
	// each client's readPump returns and handleWebSocket cleans up.
	s.clientsMu.RLock()
	for _, c := range s.clients {
		c.conn.Close()
	}
	s.clientsMu.RUnlock()
	s.wg.Wait()
	return nil
}

// Stop ends Start's blocking call and closes all connected clients.
func (s *Server) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
}

// Clients returns the ids of currently connected control clients.
func (s *Server) Clients() []string {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	return ids
}

func (s *Server) broadcastLoop() {
	ticker := time.NewTicker(s.cfg.EventPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.pollAndBroadcastOnce()
		}
	}
}

// pollAndBroadcastOnce drains the controller's event queue and broadcasts
// each event to every connected client. Split out from broadcastLoop so
// tests can drive it synchronously instead of racing a ticker.
func (s *Server) pollAndBroadcastOnce() {
	for _, ev := range s.controller.PollEvents() {
		msg, err := encodeEvent(ev)
		if err != nil {
			log.Printf("netctl: encode event: %v", err)
			continue
		}
		payload, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		s.broadcast(Message{Type: "event", Payload: payload})
	}
}

func (s *Server) broadcast(msg Message) {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	for _, c := range s.clients {
		select {
		case c.send <- msg:
		default:
			log.Printf("netctl: client %s send buffer full, dropping message", c.id)
		}
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("netctl: upgrade failed: %v", err)
		return
	}

	c := &wsClient{id: uuid.New().String(), conn: conn, send: make(chan Message, 64)}
	s.clientsMu.Lock()
	s.clients[c.id] = c
	s.clientsMu.Unlock()

	go s.writePump(c)
	s.readPump(c)

	s.clientsMu.Lock()
	delete(s.clients, c.id)
	s.clientsMu.Unlock()
	close(c.send)
	conn.Close()
}

func (s *Server) writePump(c *wsClient) {
	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

func (s *Server) readPump(c *wsClient) {
	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if err := s.handleRequest(c, msg); err != nil {
			payload, _ := json.Marshal(ErrorResponse{Detail: err.Error()})
			select {
			case c.send <- Message{Type: "error", Payload: payload}:
			default:
			}
		}
	}
}

func (s *Server) handleRequest(c *wsClient, msg Message) error {
	switch msg.Type {
	case "play":
		var req PlayRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		loop, err := decodeLoopMode(req)
		if err != nil {
			return err
		}
		return s.controller.Play(req.ID, loop)

	case "pause":
		var req PauseRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		return s.controller.Pause(req.ID)

	case "stop":
		var req StopRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		return s.controller.Stop(req.ID)

	case "unregister":
		var req UnregisterRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		return s.controller.Unregister(req.ID)

	case "set_listener_pose":
		var req SetListenerPoseRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		s.controller.SetListenerPose(decodePose(req.Pose))
		return nil

	case "set_source_config":
		var req SetSourceConfigRequest
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return err
		}
		cfg := playback.Config{Spatial: req.Spatial, Gain: req.Gain}
		if req.Spatial {
			cfg.Position = playback.Vec3{X: req.Position[0], Y: req.Position[1], Z: req.Position[2]}
		}
		return s.controller.SetSourceConfig(req.ID, cfg)

	default:
		return fmt.Errorf("netctl: unknown request type %q", msg.Type)
	}
}

func decodeLoopMode(req PlayRequest) (playback.LoopMode, error) {
	switch req.Loop {
	case "", "once":
		return playback.Once(), nil
	case "infinite":
		return playback.Infinite(), nil
	case "count":
		if req.Count < 1 {
			return playback.LoopMode{}, fmt.Errorf("netctl: count loop requires count >= 1")
		}
		return playback.Repeat(req.Count), nil
	default:
		return playback.LoopMode{}, fmt.Errorf("netctl: unknown loop mode %q", req.Loop)
	}
}

func decodePose(p Pose) spatial.Pose {
	return spatial.Pose{
		Position:    spatial.Vec3{X: p.Position[0], Y: p.Position[1], Z: p.Position[2]},
		Orientation: spatial.Quat{X: p.Orientation[0], Y: p.Orientation[1], Z: p.Orientation[2], W: p.Orientation[3]},
	}
}
