package metrics

import (
	"context"

	"github.com/alderwick/gridsched/core/anneal"
	"github.com/alderwick/gridsched/internal/eventbus"
)

// StartProgressCollector subscribes to bus and feeds every anneal.Progress
// event to sink until ctx is cancelled, grounded on the teacher's
// metrics/collector.go event-bus-to-sink bridge.
func StartProgressCollector(ctx context.Context, bus *eventbus.TypedBus[anneal.Progress], sink *PromSink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case p, ok := <-sub:
				if !ok {
					return
				}
				sink.Observe(p)
			}
		}
	}()
}
