// ABOUTME: Commands sent from control threads to the render loop
// ABOUTME: Commands are fire-and-forget; World performs synchronous validation before sending any of them

package engine

import (
	"github.com/vectoraudio/spatialengine/pkg/audio"
	"github.com/vectoraudio/spatialengine/pkg/playback"
	"github.com/vectoraudio/spatialengine/pkg/spatial"
)

// Command is sent on the command channel. The render loop drains it
// non-blocking at the top of every tick and applies it to the
// playback-instance table and spatializer before generating any samples.
type Command interface {
	isCommand()
}

// RegisterBufferCmd registers a new playback instance for buffer under id
// with the given configuration. id is allocated by World before sending; a
// spatial registration whose buffer is not mono is discarded by the render
// loop with an EngineError, as a defensive re-check of what World already
// validated synchronously.
type RegisterBufferCmd struct {
	ID     uint64
	Buffer *audio.Buffer
	Config playback.Config
}

func (RegisterBufferCmd) isCommand() {}

// UnregisterCmd removes a playback instance and releases any spatializer
// resources it held.
type UnregisterCmd struct {
	ID uint64
}

func (UnregisterCmd) isCommand() {}

// SetConfigCmd updates a registered source's configuration. Switching a
// source between spatial and non-spatial is rejected by the render loop
// with an EngineError.
type SetConfigCmd struct {
	ID     uint64
	Config playback.Config
}

func (SetConfigCmd) isCommand() {}

// PlayCmd applies the play transition with the given loop mode.
type PlayCmd struct {
	ID   uint64
	Loop playback.LoopMode
}

func (PlayCmd) isCommand() {}

// PauseCmd applies the pause transition.
type PauseCmd struct {
	ID uint64
}

func (PauseCmd) isCommand() {}

// StopCmd applies the stop transition, resetting playhead and iteration.
type StopCmd struct {
	ID uint64
}

func (StopCmd) isCommand() {}

// SetListenerPoseCmd updates the shared listener pose forwarded to the
// spatializer.
type SetListenerPoseCmd struct {
	Pose spatial.Pose
}

func (SetListenerPoseCmd) isCommand() {}

// ShutdownCmd is the sentinel that ends the render loop. World.Shutdown
// sends it and then joins the render goroutine.
type ShutdownCmd struct{}

func (ShutdownCmd) isCommand() {}
