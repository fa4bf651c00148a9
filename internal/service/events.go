package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/inventory-pos/internal/queue"
)

const publishTimeout = 10 * time.Second

// emitter publishes events in the background after a commit. Failures are
// logged and never reach the caller.
type emitter struct {
	pub EventPublisher
	log *zap.Logger
	wg  sync.WaitGroup
}

func (e *emitter) emit(ev queue.Event) {
	if e.pub == nil {
		return
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := e.pub.Publish(ctx, ev); err != nil {
			e.log.Warn("publish event failed", zap.String("type", ev.Type), zap.Error(err))
		}
	}()
}

// Wait blocks until every pending publish has finished.
func (e *emitter) Wait() { e.wg.Wait() }
