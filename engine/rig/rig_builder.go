package rig

import (
	"github.com/Carmen-Shannon/anim-go/engine/animator"
	"github.com/Carmen-Shannon/anim-go/engine/loader"
)

// RigBuilderOption is a functional option for configuring a Rig during construction.
type RigBuilderOption func(*rig)

// WithSampleWorkers is an option builder that sets the worker count for the
// parallel sampling pass. Defaults to NumCPU-1 (minimum 1) when unset or zero.
//
// Parameters:
//   - workers: the number of pool workers
//
// Returns:
//   - RigBuilderOption: a function that applies the worker count to a rig
func WithSampleWorkers(workers int) RigBuilderOption {
	return func(r *rig) {
		r.sampleWorkers = workers
	}
}

// WithParallelThreshold is an option builder that sets the node count at
// which Advance switches from a serial pass to the worker pool.
//
// Parameters:
//   - threshold: the minimum node count for a parallel pass
//
// Returns:
//   - RigBuilderOption: a function that applies the threshold to a rig
func WithParallelThreshold(threshold int) RigBuilderOption {
	return func(r *rig) {
		r.parallelThreshold = threshold
	}
}

// WithClip is an option builder that registers one node per track of an
// imported clip, keyed by the clip's target node indices. The animator
// options apply to every registered node.
//
// Parameters:
//   - clip: the imported clip whose tracks to register
//   - options: variadic list of animator options applied to each node
//
// Returns:
//   - RigBuilderOption: a function that registers the clip's nodes on a rig
func WithClip(clip *loader.Clip, options ...animator.AnimatorBuilderOption) RigBuilderOption {
	return func(r *rig) {
		for nodeID, track := range clip.Tracks {
			// Node IDs come from the clip's own map, so duplicates are impossible.
			_ = r.AddNode(nodeID, track, options...)
		}
	}
}
