package engine

import (
	"sync"

	"github.com/yogabrata/formation/model"
)

// Execution is the handle for one running workflow. The run loop is the sole
// writer of the instance; readers take deep-copied snapshots under the read
// lock and never block the writer for longer than a state transition.
type Execution struct {
	mu         sync.RWMutex
	wf         *model.WorkflowInstance
	cancel     chan struct{}
	cancelOnce sync.Once
	done       chan struct{}
}

func newExecution(wf *model.WorkflowInstance) *Execution {
	return &Execution{
		wf:     wf,
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func (e *Execution) WorkflowId() string {
	return e.wf.WorkflowId
}

func (e *Execution) Snapshot() model.WorkflowSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wf.Snapshot()
}

func (e *Execution) Summary() model.WorkflowSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wf.Summary()
}

// Instance returns a deep copy of the workflow instance.
func (e *Execution) Instance() *model.WorkflowInstance {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.wf.Clone()
}

// Cancel requests cooperative cancellation. An in-flight step finishes its
// attempt; the loop stops before dispatching the next one.
func (e *Execution) Cancel() {
	e.cancelOnce.Do(func() {
		close(e.cancel)
	})
}

func (e *Execution) cancelRequested() bool {
	select {
	case <-e.cancel:
		return true
	default:
		return false
	}
}

// Await blocks until the run loop has terminated.
func (e *Execution) Await() {
	<-e.done
}

func (e *Execution) Done() <-chan struct{} {
	return e.done
}
