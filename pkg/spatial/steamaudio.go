// ABOUTME: Adapter shape for a native Steam-Audio-class HRTF/ambisonics engine
// ABOUTME: No native bindings are vendored here; Prepare fails loudly until one is wired in

package spatial

import "fmt"

// SteamAudio is the adapter shape a real HRTF/ambisonics engine (Steam
// Audio or equivalent) would sit behind. The core does not vendor native
// bindings for one, so this adapter's methods fail with a clear error
// rather than silently behaving like Panning — callers that need
// production-quality binaural rendering must supply a build with the real
// bindings linked in and swap this type out for theirs; both satisfy the
// same Spatializer interface.
type SteamAudio struct {
	Tracer   RayTracer // optional occlusion/reflection provider
	hrtfPath string
	prepared bool
}

// NewSteamAudio creates an adapter that will load HRTF data from hrtfPath
// (empty for the engine's bundled default) once a native binding is linked.
func NewSteamAudio(hrtfPath string) *SteamAudio {
	return &SteamAudio{Tracer: NoopTracer{}, hrtfPath: hrtfPath}
}

func (s *SteamAudio) Prepare(rate, blockSize, outChannels int) error {
	path := s.hrtfPath
	if path == "" {
		path = "(bundled default)"
	}
	return fmt.Errorf("spatial: steam audio backend has no native binding linked into this build (hrtf data: %s); use spatial.Panning or link one", path)
}

// CreateSource and Process both gate on prepared rather than repeating
// Prepare's error: Prepare never succeeds in this build (no binding to
// flip prepared to true), so "not prepared" is always the accurate
// failure and there is no second failure mode to report here.
func (s *SteamAudio) CreateSource(id uint64, initial Vec3) error {
	if !s.prepared {
		return fmt.Errorf("spatial: steam audio backend not prepared")
	}
	return nil
}

func (s *SteamAudio) DestroySource(id uint64) {}

func (s *SteamAudio) SetListener(pose Pose) {}

func (s *SteamAudio) SetSourcePosition(id uint64, pos Vec3) {}

func (s *SteamAudio) Process(inputs []SourceInput, out []float32) error {
	if !s.prepared {
		return fmt.Errorf("spatial: steam audio backend not prepared")
	}
	return nil
}
