// ABOUTME: Entry point for the spatial audio runtime status monitor
// ABOUTME: Connects to a running engine's remote control WebSocket and renders a live terminal view

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vectoraudio/spatialengine/pkg/monitor"
	"github.com/vectoraudio/spatialengine/pkg/netctl"
)

var (
	addr       = flag.String("addr", "localhost:7711", "engine control address, host:port")
	worldName  = flag.String("name", "spatialrt", "label shown at the top of the monitor")
	maxEvents  = flag.Int("max-events", 8, "number of recent events to keep on screen")
)

func main() {
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/control"}
	log.Printf("spatialrt-monitor: connecting to %s", u.String())

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("spatialrt-monitor: dial: %v", err)
	}
	defer conn.Close()

	mon := monitor.New(*worldName)

	go pumpEvents(conn, mon)

	if err := mon.Start(); err != nil {
		log.Fatalf("spatialrt-monitor: %v", err)
	}
}

// pumpEvents reads EventMessages off the control socket and folds them into
// a running Snapshot, pushing an update to the TUI on every message.
func pumpEvents(conn *websocket.Conn, mon *monitor.Monitor) {
	snap := monitor.Snapshot{WorldName: *worldName}
	var recent []string

	for {
		var msg netctl.Message
		if err := conn.ReadJSON(&msg); err != nil {
			mon.Stop()
			return
		}
		if msg.Type != "event" {
			continue
		}

		var ev netctl.EventMessage
		if err := json.Unmarshal(msg.Payload, &ev); err != nil {
			continue
		}

		applyEvent(&snap, ev)
		recent = append([]string{formatEvent(ev)}, recent...)
		if len(recent) > *maxEvents {
			recent = recent[:*maxEvents]
		}
		snap.RecentEvents = recent
		mon.Update(snap)
	}
}

// applyEvent folds an observed event into the running snapshot's counters.
// Active-source and overrun/underrun totals are derived here from the
// event stream alone, since the monitor has no direct access to the
// engine's Stats.
func applyEvent(snap *monitor.Snapshot, ev netctl.EventMessage) {
	switch ev.Kind {
	case "SourceStarted":
		snap.ActiveSources++
	case "SourceStopped", "SourceCompleted":
		if snap.ActiveSources > 0 {
			snap.ActiveSources--
		}
	case "BufferOverrun":
		snap.Overruns++
	case "BufferUnderrun":
		snap.Underruns++
	}
}

func formatEvent(ev netctl.EventMessage) string {
	return fmt.Sprintf("%s %s", time.Now().Format("15:04:05"), ev.Kind)
}
