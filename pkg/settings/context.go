package settings

import "context"

type runKey struct{}

// IntoContext returns a copy of ctx carrying run.
func IntoContext(ctx context.Context, run *Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// FromContext returns the run settings carried by ctx. Commands started
// without them (shell completion, tests) get NewCliParams defaults.
func FromContext(ctx context.Context) *Run {
	if run, ok := ctx.Value(runKey{}).(*Run); ok && run != nil {
		return run
	}
	return NewCliParams()
}
