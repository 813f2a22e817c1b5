package rig

import (
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/anim-go/common"
	"github.com/Carmen-Shannon/anim-go/engine/animator"
	"github.com/Carmen-Shannon/anim-go/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// defaultParallelThreshold is the node count at which Advance switches from a
// serial pass to the worker pool. Below this the per-task overhead outweighs
// the parallelism win for a pure in-memory sampling pass.
const defaultParallelThreshold = 64

// nodeState holds one animated node's animator plus the pose and matrix
// cached by the most recent Advance.
type nodeState struct {
	anim   animator.Animator
	pose   model.Transform
	matrix mgl32.Mat4
}

// rig is the implementation of the Rig interface.
type rig struct {
	mu *sync.Mutex

	nodes map[int]*nodeState
	order []int // node IDs in insertion order, for a deterministic pass

	// samplePool manages a bounded set of reusable goroutines for the
	// parallel sampling pass of Advance. Workers persist across frames,
	// avoiding per-frame goroutine spawn/teardown overhead.
	samplePool        worker.DynamicWorkerPool
	sampleWorkers     int
	parallelThreshold int
}

// Rig drives playback for a set of animated nodes, one Animator per node.
// Each Advance ticks every animator by the frame delta and caches the
// resulting pose and 4x4 matrix per node, ready for the renderer to consume
// as per-draw transform constants.
//
// Tracks are shared read-only across nodes and rigs; each node's animator is
// ticked by exactly one task per pass, so no animator is ever advanced from
// two goroutines at once.
type Rig interface {
	// AddNode registers an animated node backed by the given track. Each node
	// ID is accepted once; re-registering an existing ID fails with
	// model.ErrInvariantViolation.
	//
	// Parameters:
	//   - nodeID: the node identifier (unique within the rig)
	//   - track: the populated track for this node
	//   - options: variadic list of animator options (speed, loop, start time)
	//
	// Returns:
	//   - error: nil on success, model.ErrInvariantViolation on a duplicate ID
	AddNode(nodeID int, track animator.KeyframeTrack, options ...animator.AnimatorBuilderOption) error

	// NodeCount returns the number of registered nodes.
	//
	// Returns:
	//   - int: the node count
	NodeCount() int

	// Advance ticks every node's animator by deltaTime and caches the sampled
	// pose and matrix per node. At or above the parallel threshold the pass
	// runs on the worker pool; otherwise it runs serially. Per-node sampling
	// failures do not stop the pass; they are collected and returned joined,
	// so the caller can skip this frame's update for the failed nodes while
	// the rest of the rig stays animated.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: nil if every node sampled, otherwise the joined per-node errors
	Advance(deltaTime float32) error

	// Pose returns the pose cached by the most recent Advance for a node.
	//
	// Parameters:
	//   - nodeID: the node identifier
	//
	// Returns:
	//   - model.Transform: the cached pose
	//   - bool: false if the node is not registered
	Pose(nodeID int) (model.Transform, bool)

	// Matrix returns the 4x4 matrix cached by the most recent Advance.
	//
	// Parameters:
	//   - nodeID: the node identifier
	//
	// Returns:
	//   - mgl32.Mat4: the cached column-major matrix
	//   - bool: false if the node is not registered
	Matrix(nodeID int) (mgl32.Mat4, bool)

	// MatrixBytes returns the cached matrix as a 64-byte view suitable for a
	// per-draw constant upload. WARNING: the slice aliases the rig's cached
	// matrix - copy it before the next Advance if it must outlive the frame.
	//
	// Parameters:
	//   - nodeID: the node identifier
	//
	// Returns:
	//   - []byte: the 64-byte matrix view, or nil if the node is not registered
	MatrixBytes(nodeID int) []byte
}

var _ Rig = &rig{}

// NewRig creates a Rig. The sampling worker pool is sized to NumCPU-1 workers
// unless WithSampleWorkers overrides it; WithClip pre-registers one node per
// track of an imported clip.
//
// Parameters:
//   - options: variadic list of RigBuilderOption functions
//
// Returns:
//   - Rig: a new Rig instance
func NewRig(options ...RigBuilderOption) Rig {
	r := &rig{
		mu:                &sync.Mutex{},
		nodes:             make(map[int]*nodeState),
		parallelThreshold: defaultParallelThreshold,
	}
	for _, option := range options {
		option(r)
	}

	// Initialize the pool after options so WithSampleWorkers can override the
	// default. Queue size of 256 accommodates typical node counts with headroom.
	r.sampleWorkers = common.Coalesce(r.sampleWorkers, max(runtime.NumCPU()-1, 1))
	r.samplePool = worker.NewDynamicWorkerPool(r.sampleWorkers, 256, 1*time.Second)

	return r
}

func (r *rig) AddNode(nodeID int, track animator.KeyframeTrack, options ...animator.AnimatorBuilderOption) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nodes[nodeID]; exists {
		return fmt.Errorf("rig: node %d already registered: %w", nodeID, model.ErrInvariantViolation)
	}
	// Nodes report the identity pose until the first Advance samples them.
	pose := model.NewTransform()
	r.nodes[nodeID] = &nodeState{
		anim:   animator.NewAnimator(track, options...),
		pose:   pose,
		matrix: pose.Matrix4(),
	}
	r.order = append(r.order, nodeID)
	return nil
}

func (r *rig) NodeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}

func (r *rig) Advance(deltaTime float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.order) >= r.parallelThreshold {
		return r.advanceParallel(deltaTime)
	}

	var errs []error
	for _, id := range r.order {
		if err := r.nodes[id].advance(deltaTime); err != nil {
			errs = append(errs, fmt.Errorf("rig: node %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// advanceParallel fans the sampling pass out over the worker pool, one task
// per node. Each animator is touched by exactly one task.
func (r *rig) advanceParallel(deltaTime float32) error {
	var wg sync.WaitGroup
	errs := make([]error, len(r.order))

	taskID := 0
	for i, id := range r.order {
		n := r.nodes[id]

		wg.Add(1)
		nCap, nodeID, slot := n, id, i // capture for closure
		tid := taskID
		taskID++
		r.samplePool.SubmitTask(worker.Task{
			ID: tid,
			Do: func() (any, error) {
				defer wg.Done()
				defer func() {
					if rec := recover(); rec != nil {
						log.Printf("rig: sampling task recovered from panic: %v", rec)
						errs[slot] = fmt.Errorf("rig: node %d: panic during sampling: %v", nodeID, rec)
					}
				}()

				if err := nCap.advance(deltaTime); err != nil {
					errs[slot] = fmt.Errorf("rig: node %d: %w", nodeID, err)
					return nil, err
				}
				return nil, nil
			},
		})
	}
	wg.Wait()

	return errors.Join(errs...)
}

// advance ticks one node and refreshes its cached pose and matrix. A failed
// tick leaves the previous cache in place so the renderer keeps the node's
// last good transform.
func (n *nodeState) advance(deltaTime float32) error {
	pose, err := n.anim.Tick(deltaTime)
	if err != nil {
		return err
	}
	n.pose = pose
	n.matrix = pose.Matrix4()
	return nil
}

func (r *rig) Pose(nodeID int) (model.Transform, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return model.Transform{}, false
	}
	return n.pose, true
}

func (r *rig) Matrix(nodeID int) (mgl32.Mat4, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return mgl32.Mat4{}, false
	}
	return n.matrix, true
}

func (r *rig) MatrixBytes(nodeID int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.nodes[nodeID]
	if !ok {
		return nil
	}
	return common.StructToBytes(&n.matrix)
}
