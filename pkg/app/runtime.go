package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dyike/EquilibriumGo/config"
)

// Notifier topics.
const (
	TopicReady        = "engine.ready"
	TopicReloaded     = "engine.reloaded"
	TopicReloadFailed = "engine.reload_failed"
)

// ReloadEvent is the payload of TopicReloaded.
type ReloadEvent struct {
	Version uint64  `json:"version"`
	BuiltAt string  `json:"built_at"`
	Method  string  `json:"method"`
	Step    float64 `json:"step"`
}

type EngineBuilder func(config.Config) (*Engine, error)

type Option func(*Runtime)

func WithBuilder(builder EngineBuilder) Option {
	return func(r *Runtime) {
		if builder != nil {
			r.builder = builder
		}
	}
}

func WithNotifier(fn func(topic, payload string)) Option {
	return func(r *Runtime) {
		r.notify = fn
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// Runtime keeps an Engine built from the managed config and rebuilds it
// whenever the config file changes.
type Runtime struct {
	cfgMgr *config.Manager
	engine atomic.Pointer[Engine]

	builder EngineBuilder
	notify  func(string, string)
	logger  logrus.FieldLogger
	cancel  context.CancelFunc
}

func NewRuntime(cfgMgr *config.Manager, opts ...Option) (*Runtime, error) {
	if cfgMgr == nil {
		return nil, fmt.Errorf("config manager is required")
	}

	rt := &Runtime{
		cfgMgr:  cfgMgr,
		builder: BuildEngine,
		logger:  logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(rt)
	}

	if err := rt.reload(cfgMgr.Get(), TopicReady); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	rt.cancel = cancel
	if err := cfgMgr.Watch(ctx, func(cfg config.Config) {
		if err := rt.reload(cfg, TopicReloaded); err != nil {
			rt.logger.WithError(err).Error("engine reload failed")
		}
	}); err != nil {
		cancel()
		return nil, err
	}

	return rt, nil
}

func (r *Runtime) Engine() *Engine {
	return r.engine.Load()
}

func (r *Runtime) Close() {
	if r.cancel != nil {
		r.cancel()
	}
}

func (r *Runtime) reload(cfg config.Config, topic string) error {
	engine, err := r.builder(cfg)
	if err != nil {
		r.notifyFailure(err)
		return err
	}
	r.engine.Store(engine)
	r.notifySuccess(topic, engine)
	return nil
}

func (r *Runtime) notifySuccess(topic string, engine *Engine) {
	r.logger.WithFields(logrus.Fields{
		"version": engine.Version,
		"method":  engine.Config.SolverMethod,
		"step":    engine.Config.SearchStep,
	}).Debug("engine built")

	if r.notify == nil {
		return
	}
	payload, _ := json.Marshal(ReloadEvent{
		Version: engine.Version,
		BuiltAt: engine.BuiltAt.UTC().Format(time.RFC3339),
		Method:  engine.Config.SolverMethod,
		Step:    engine.Config.SearchStep,
	})
	r.notify(topic, string(payload))
}

func (r *Runtime) notifyFailure(err error) {
	if r.notify == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{
		"error": err.Error(),
	})
	r.notify(TopicReloadFailed, string(payload))
}
