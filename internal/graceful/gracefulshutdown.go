package graceful

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"ReadinessBot/internal/utils/logger/sl"
)

type Operation func(ctx context.Context) error

// Step is a named clean up operation.
type Step struct {
	Name string
	Op   Operation
}

// SignalContext is cancelled on SIGINT, SIGTERM or SIGHUP.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
}

// GracefulShutdown waits for trigger to be done and then runs steps in
// order, all within timeout. Intake (bot, HTTP) goes first so storage is
// closed last. The returned channel closes when every step has finished.
func GracefulShutdown(trigger context.Context, timeout time.Duration, steps []Step, logger *slog.Logger) <-chan struct{} {
	op := "GracefulShutdown()"
	log := logger.With(
		slog.String("op", op))

	wait := make(chan struct{})
	go func() {
		defer close(wait)
		<-trigger.Done()

		log.Info("shutting down")

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := Shutdown(ctx, steps, log); err != nil {
			log.Error("graceful shutdown finished with errors", sl.Err(err))
			return
		}
		log.Info("graceful shutdown completed")
	}()

	return wait
}

// Shutdown runs steps in order and joins their errors. A failing step does
// not stop the ones after it.
func Shutdown(ctx context.Context, steps []Step, log *slog.Logger) error {
	var errs []error
	for _, step := range steps {
		log.Info("cleaning up", slog.String("process", step.Name))
		if err := step.Op(ctx); err != nil {
			log.Error("error clean up", slog.String("process", step.Name), sl.Err(err))
			errs = append(errs, fmt.Errorf("%s: %w", step.Name, err))
			continue
		}
		log.Info("shutdown gracefully", slog.String("process", step.Name))
	}
	return errors.Join(errs...)
}
