// Package listener contains resolver.Listener implementations that observe model resolutions.
package listener

import (
	"context"
	"log/slog"
	"sync"

	slogcontext "github.com/veqryn/slog-context"

	"github.com/uklance/gradle-dependency-export/bindings/go/metrics"
	"github.com/uklance/gradle-dependency-export/bindings/go/resolver"
)

const Realm = "listener"

type multi []resolver.Listener

// Multi notifies all listeners in the given order. Nil listeners are skipped.
func Multi(listeners ...resolver.Listener) resolver.Listener {
	m := make(multi, 0, len(listeners))
	for _, l := range listeners {
		if l != nil {
			m = append(m, l)
		}
	}
	return m
}

func (m multi) OnResolveModel(ctx context.Context, event resolver.Event) {
	for _, l := range m {
		l.OnResolveModel(ctx, event)
	}
}

// Log logs every resolution at the given level.
func Log(level slog.Level) resolver.Listener {
	return resolver.ListenerFunc(func(ctx context.Context, event resolver.Event) {
		slogcontext.FromCtx(ctx).Log(ctx, level, "resolved model",
			slog.String("realm", Realm),
			slog.String("coordinate", event.Coordinate().String()),
			slog.String("file", event.File),
		)
	})
}

// Recorder records all events. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []resolver.Event
}

var _ resolver.Listener = (*Recorder)(nil)

func (r *Recorder) OnResolveModel(_ context.Context, event resolver.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events in order of notification.
func (r *Recorder) Events() []resolver.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]resolver.Event(nil), r.events...)
}

var modelsResolved = metrics.MustRegisterCounterVec(Realm, "models_resolved_total",
	"Project models resolved, by group id.", "group")

// Metrics counts resolutions per group id.
func Metrics() resolver.Listener {
	return resolver.ListenerFunc(func(_ context.Context, event resolver.Event) {
		modelsResolved.WithLabelValues(event.GroupID).Inc()
	})
}
