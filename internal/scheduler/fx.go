package scheduler

import (
	"context"

	"github.com/smallbiznis/haccp/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig, New),
	fx.Invoke(start),
)

// start runs the sweeps in the background for the lifetime of the app. With
// SCHEDULER_ENABLED=false the scheduler is built but never started.
func start(lc fx.Lifecycle, cfg config.Config, sched *Scheduler) {
	if !cfg.Scheduler.Enabled {
		sched.log.Info("scheduler disabled")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	lc.Append(fx.StartStopHook(
		func() {
			go func() {
				defer close(done)
				sched.RunForever(ctx)
			}()
		},
		func(stop context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stop.Done():
				return stop.Err()
			}
		},
	))
}
