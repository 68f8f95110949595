// Package context carries the runtime set up by the root command to the sub commands.
package context

import (
	"context"

	"github.com/uklance/gradle-dependency-export/cli/cmd/setup"
)

type Reader interface {
	Context() context.Context
}

type Writer interface {
	SetContext(ctx context.Context)
}

type ReaderWriter interface {
	Reader
	Writer
}

type runtimeKey struct{}

// WithRuntime returns a copy of ctx carrying rt.
func WithRuntime(ctx context.Context, rt *setup.Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// Runtime returns the runtime of ctx or nil.
func Runtime(ctx context.Context) *setup.Runtime {
	rt, _ := ctx.Value(runtimeKey{}).(*setup.Runtime)
	return rt
}

// Register attaches rt to the context of cmd.
func Register(cmd ReaderWriter, rt *setup.Runtime) {
	cmd.SetContext(WithRuntime(cmd.Context(), rt))
}
