package redis

import (
	"context"
	"encoding/json"
	"errors"

	rd "github.com/go-redis/redis/v9"
	"github.com/yogabrata/formation/logger"
	"github.com/yogabrata/formation/model"
	"github.com/yogabrata/formation/persistence"
	"go.uber.org/zap"
)

const WORKFLOW_SNAPSHOT string = "WORKFLOW_SNAPSHOT"

type redisSnapshotStore struct {
	*baseDao
}

var _ persistence.SnapshotStore = new(redisSnapshotStore)

func NewRedisSnapshotStore(conf Config) *redisSnapshotStore {
	return &redisSnapshotStore{
		baseDao: newBaseDao(conf),
	}
}

func (rs *redisSnapshotStore) Save(wf *model.WorkflowInstance) error {
	key := rs.baseDao.getNamespaceKey(WORKFLOW_SNAPSHOT)
	ctx := context.Background()
	data, err := json.Marshal(wf)
	if err != nil {
		return err
	}
	if err := rs.redisClient.HSet(ctx, key, []string{wf.WorkflowId, string(data)}).Err(); err != nil {
		logger.Error("error saving workflow snapshot",
			zap.String("workflowId", wf.WorkflowId), zap.Error(err))
		return persistence.StorageLayerError{Message: err.Error()}
	}
	return nil
}

func (rs *redisSnapshotStore) Load(workflowId string) (*model.WorkflowInstance, error) {
	key := rs.baseDao.getNamespaceKey(WORKFLOW_SNAPSHOT)
	ctx := context.Background()
	data, err := rs.redisClient.HGet(ctx, key, workflowId).Result()
	if err != nil {
		if errors.Is(err, rd.Nil) {
			return nil, persistence.SnapshotNotFoundError{WorkflowId: workflowId}
		}
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	var wf model.WorkflowInstance
	if err := json.Unmarshal([]byte(data), &wf); err != nil {
		return nil, persistence.StorageLayerError{Message: err.Error()}
	}
	return &wf, nil
}
