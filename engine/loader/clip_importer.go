// Package loader converts already-decoded animation channel buffers into
// sampler-ready tracks. It is the boundary with the asset pipeline: file
// parsing and accessor decoding happen upstream, and this package only
// accepts flat float arrays grouped by target node and channel kind.
package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/anim-go/engine/animator"
	"github.com/Carmen-Shannon/anim-go/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// Channel is one decoded animation channel: a timeline and a flat value
// buffer for a single property of a single target node. Values are packed
// per-sample with a stride of 3 floats for vector kinds (translation, scale)
// and 4 floats in x, y, z, w order for rotation.
type Channel struct {
	// TargetNode identifies the animated node this channel drives.
	TargetNode int

	// Kind is the animated property this channel targets.
	Kind animator.ChannelKind

	// Times are the keyframe times in seconds, strictly increasing.
	Times []float32

	// Values is the flat sample buffer, len(Times) * stride floats.
	Values []float32
}

// Clip is an imported animation clip: one populated track per animated node,
// plus the clip's total duration (the latest timeline end across all tracks).
type Clip struct {
	// Name is the clip identifier.
	Name string

	// Duration is the total clip length in seconds.
	Duration float32

	// Tracks maps target node index to that node's populated track.
	Tracks map[int]animator.KeyframeTrack
}

// clipImporterImpl is the implementation of the ClipImporter interface.
type clipImporterImpl struct{}

// ClipImporter builds sampler-ready clips from decoded channel buffers. It
// groups channels by target node, merging each node's translation, rotation,
// and scale channels onto one shared-timeline track.
type ClipImporter interface {
	// ImportClip validates and imports a set of decoded channels as one clip.
	// Channels targeting the same node must share an identical timeline; a
	// conflicting timeline, a value buffer whose length does not match the
	// channel's stride and sample count, or two channels of the same kind for
	// one node all fail with model.ErrInvariantViolation. Rotation values are
	// converted through QuatFromXYZW, making the x, y, z, w buffer order an
	// enforced contract.
	//
	// Parameters:
	//   - name: the clip identifier
	//   - channels: the decoded channels, any order, grouped by the importer
	//
	// Returns:
	//   - *Clip: the imported clip with one track per target node
	//   - error: nil on success, model.ErrInvariantViolation on malformed input
	ImportClip(name string, channels []Channel) (*Clip, error)
}

var _ ClipImporter = &clipImporterImpl{}

// NewClipImporter creates a new ClipImporter.
//
// Returns:
//   - ClipImporter: a new importer instance
func NewClipImporter() ClipImporter {
	return &clipImporterImpl{}
}

func (c *clipImporterImpl) ImportClip(name string, channels []Channel) (*Clip, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("loader: clip %q has no channels: %w", name, model.ErrMissingData)
	}

	clip := &Clip{
		Name:   name,
		Tracks: make(map[int]animator.KeyframeTrack),
	}

	for i, ch := range channels {
		stride, err := channelStride(ch.Kind)
		if err != nil {
			return nil, fmt.Errorf("loader: clip %q channel %d: %w", name, i, err)
		}
		if len(ch.Values) != len(ch.Times)*stride {
			return nil, fmt.Errorf("loader: clip %q channel %d (%s, node %d): %d values for %d samples at stride %d: %w",
				name, i, ch.Kind, ch.TargetNode, len(ch.Values), len(ch.Times), stride, model.ErrInvariantViolation)
		}

		track, ok := clip.Tracks[ch.TargetNode]
		if !ok {
			track = animator.NewKeyframeTrack()
			clip.Tracks[ch.TargetNode] = track
		}

		// Binding the timeline enforces that all of a node's channels agree.
		if err := track.SetTimeline(ch.Times); err != nil {
			return nil, fmt.Errorf("loader: clip %q channel %d (%s, node %d): %w", name, i, ch.Kind, ch.TargetNode, err)
		}

		samples, err := decodeSamples(ch.Kind, ch.Times, ch.Values)
		if err != nil {
			return nil, fmt.Errorf("loader: clip %q channel %d (%s, node %d): %w", name, i, ch.Kind, ch.TargetNode, err)
		}
		if err := track.SetChannel(samples); err != nil {
			return nil, fmt.Errorf("loader: clip %q channel %d (%s, node %d): %w", name, i, ch.Kind, ch.TargetNode, err)
		}

		if end := track.Duration(); end > clip.Duration {
			clip.Duration = end
		}
	}

	return clip, nil
}

// channelStride returns the per-sample float count for a channel kind.
func channelStride(kind animator.ChannelKind) (int, error) {
	switch kind {
	case animator.ChannelTranslation, animator.ChannelScale:
		return 3, nil
	case animator.ChannelRotation:
		return 4, nil
	default:
		return 0, fmt.Errorf("unknown channel kind %d: %w", int(kind), model.ErrInvariantViolation)
	}
}

// decodeSamples converts a flat value buffer into typed, tagged samples.
func decodeSamples(kind animator.ChannelKind, times, values []float32) (animator.ChannelSamples, error) {
	switch kind {
	case animator.ChannelRotation:
		rotations := make([]mgl32.Quat, len(times))
		for i := range times {
			v := values[i*4 : i*4+4]
			q, err := QuatFromXYZW(v[0], v[1], v[2], v[3])
			if err != nil {
				return animator.ChannelSamples{}, fmt.Errorf("sample %d: %w", i, err)
			}
			rotations[i] = q
		}
		return animator.RotationSamples(rotations), nil
	default:
		vectors := make([]mgl32.Vec3, len(times))
		for i := range times {
			v := values[i*3 : i*3+3]
			vectors[i] = mgl32.Vec3{v[0], v[1], v[2]}
		}
		if kind == animator.ChannelTranslation {
			return animator.TranslationSamples(vectors), nil
		}
		return animator.ScaleSamples(vectors), nil
	}
}
