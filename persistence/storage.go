package persistence

import (
	"fmt"

	"github.com/yogabrata/formation/model"
)

type SnapshotNotFoundError struct {
	WorkflowId string
}

func (e SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("no snapshot for workflow %s", e.WorkflowId)
}

type StorageLayerError struct {
	Message string
}

func (e StorageLayerError) Error() string {
	return fmt.Sprintf("storage layer error: %s", e.Message)
}

// SnapshotStore is the optional durability collaborator. The engine writes a
// snapshot on terminal transitions; correctness within one process never
// depends on it.
type SnapshotStore interface {
	Save(wf *model.WorkflowInstance) error
	Load(workflowId string) (*model.WorkflowInstance, error)
}

type NopSnapshotStore struct{}

func (NopSnapshotStore) Save(*model.WorkflowInstance) error {
	return nil
}

func (NopSnapshotStore) Load(workflowId string) (*model.WorkflowInstance, error) {
	return nil, SnapshotNotFoundError{WorkflowId: workflowId}
}
