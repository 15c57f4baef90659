package interpreter

import (
	"context"
	"sync"
	"time"
)

type RuntimeConfig struct {
	// ExecTimeout bounds one Run/Exec call. Zero means no limit.
	ExecTimeout  time.Duration
	MaxCallDepth int
	LogExecution bool
}

var (
	runtimeConfigMu sync.RWMutex
	runtimeConfig   = RuntimeConfig{
		ExecTimeout:  0,
		MaxCallDepth: 2048,
		LogExecution: false,
	}
)

func SetRuntimeConfig(cfg RuntimeConfig) {
	runtimeConfigMu.Lock()
	defer runtimeConfigMu.Unlock()
	runtimeConfig = cfg
}

func GetRuntimeConfig() RuntimeConfig {
	runtimeConfigMu.RLock()
	defer runtimeConfigMu.RUnlock()
	return runtimeConfig
}

func withExecTimeout(ctx context.Context, cfg RuntimeConfig) (context.Context, context.CancelFunc) {
	if cfg.ExecTimeout <= 0 {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, cfg.ExecTimeout)
}
