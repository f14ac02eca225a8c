package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"

	logx "github.com/agentic-rag/server/pkg/logger"
)

// NewWorkflowCallbacks builds a generic callbacks.Handler that logs every
// graph component's lifecycle. Node-level state tracing lives in the graph's
// state post-handlers; this handler only adds component start/end/error
// visibility.
func NewWorkflowCallbacks() einocb.Handler {
	return einocb.NewHandlerBuilder().
		OnStartFn(func(ctx context.Context, info *einocb.RunInfo, input einocb.CallbackInput) context.Context {
			if info != nil {
				logx.Debug().Str("component", string(info.Component)).Str("name", info.Name).Msg("Component start")
			}
			return ctx
		}).
		OnEndFn(func(ctx context.Context, info *einocb.RunInfo, output einocb.CallbackOutput) context.Context {
			if info != nil {
				logx.Debug().Str("component", string(info.Component)).Str("name", info.Name).Msg("Component end")
			}
			return ctx
		}).
		OnErrorFn(func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			if info != nil {
				logx.Error().Err(err).Str("component", string(info.Component)).Str("name", info.Name).Msg("Component error")
			}
			return ctx
		}).
		Build()
}
