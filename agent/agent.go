package agent

import (
	"context"
	"sync"
	"time"

	"github.com/yogabrata/formation/config"
	"github.com/yogabrata/formation/dispatch"
	"github.com/yogabrata/formation/engine"
	"github.com/yogabrata/formation/gateway"
	"github.com/yogabrata/formation/logger"
	"github.com/yogabrata/formation/persistence"
	redisstore "github.com/yogabrata/formation/persistence/redis"
	"github.com/yogabrata/formation/registry"
	"github.com/yogabrata/formation/rest"
	"github.com/yogabrata/formation/service"
	"github.com/yogabrata/formation/store"
)

// Agent assembles the orchestration components and owns their lifecycle.
type Agent struct {
	Config          config.Config
	gateway         *gateway.Manager
	registry        *registry.Registry
	dispatcher      *dispatch.Dispatcher
	snapshots       persistence.SnapshotStore
	engine          *engine.Engine
	workflowService *service.WorkflowService
	httpServer      *rest.Server
	shutdown        bool
	shutdownLock    sync.Mutex
}

func New(conf config.Config) (*Agent, error) {
	a := &Agent{
		Config: conf,
	}
	setup := []func() error{
		a.setupGateway,
		a.setupRegistry,
		a.setupSnapshotStore,
		a.setupEngine,
		a.setupWorkflowService,
		a.setupHttpServer,
	}
	for _, fn := range setup {
		if err := fn(); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Agent) setupGateway() error {
	a.gateway = gateway.NewManager()
	for _, sourceConf := range a.Config.Sources {
		a.gateway.AddSource(sourceConf)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	a.gateway.ConnectAll(ctx)
	return nil
}

func (a *Agent) setupRegistry() error {
	a.registry = registry.NewRegistry()
	return registry.RegisterBuiltIn(a.registry)
}

func (a *Agent) setupSnapshotStore() error {
	switch a.Config.StorageType {
	case config.STORAGE_TYPE_REDIS:
		a.snapshots = redisstore.NewRedisSnapshotStore(redisstore.Config{
			Addrs:     a.Config.RedisConfig.Addrs,
			Namespace: a.Config.RedisConfig.Namespace,
		})
	default:
		a.snapshots = persistence.NopSnapshotStore{}
	}
	return nil
}

func (a *Agent) setupEngine() error {
	a.dispatcher = dispatch.NewDispatcher(a.gateway)
	pacing := time.Duration(a.Config.StepPacingMillis) * time.Millisecond
	a.engine = engine.NewEngine(a.registry, a.dispatcher,
		store.NewStore[*engine.Execution](), a.snapshots, pacing)
	return nil
}

func (a *Agent) setupWorkflowService() error {
	a.workflowService = service.NewWorkflowService(a.engine, a.registry, a.gateway)
	return nil
}

func (a *Agent) setupHttpServer() error {
	var err error
	a.httpServer, err = rest.NewServer(a.Config.HttpPort, a.workflowService)
	if err != nil {
		return err
	}
	return nil
}

func (a *Agent) Start() error {
	go func() {
		if err := a.httpServer.Start(); err != nil {
			_ = a.Shutdown()
			panic(err)
		}
	}()
	return nil
}

func (a *Agent) Shutdown() error {
	logger.Info("shutting down server")
	a.shutdownLock.Lock()
	defer a.shutdownLock.Unlock()
	if a.shutdown {
		return nil
	}
	a.shutdown = true

	shutdown := []func() error{
		a.httpServer.Stop,
		a.engine.Stop,
	}
	for _, fn := range shutdown {
		if err := fn(); err != nil {
			return err
		}
	}
	logger.Info("all services stopped")
	return nil
}
