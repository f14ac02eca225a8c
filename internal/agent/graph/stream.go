package graph

import (
	"context"

	"github.com/agentic-rag/server/internal/agent/model"
)

// Event is one step of a streamed run: the node that just finished and the
// accumulated state after its update was merged. Events arrive in execution
// order; streaming does not change execution semantics.
type Event struct {
	Node  string
	State model.RAGState
}

// Stream exposes a running workflow as a sequence of node events. Consume
// Events until the channel closes, then call Wait for the final state.
type Stream struct {
	events chan Event
	done   chan struct{}

	final model.RAGState
	err   error
}

func newStream() *Stream {
	return &Stream{
		events: make(chan Event),
		done:   make(chan struct{}),
	}
}

// Events returns the channel of node events. It is closed when the run ends.
func (s *Stream) Events() <-chan Event {
	return s.events
}

// Wait blocks until the run ends and returns the same final state and error
// Run would have returned.
func (s *Stream) Wait() (model.RAGState, error) {
	<-s.done
	return s.final, s.err
}

func (s *Stream) finish(final model.RAGState, err error) {
	close(s.events)
	s.final = final
	s.err = err
	close(s.done)
}

type streamCtxKey struct{}

func withStream(ctx context.Context, s *Stream) context.Context {
	return context.WithValue(ctx, streamCtxKey{}, s)
}

// emit publishes a node event when the run is being streamed; plain runs
// carry no stream and skip it.
func emit(ctx context.Context, node string, st model.RAGState) {
	s, ok := ctx.Value(streamCtxKey{}).(*Stream)
	if !ok {
		return
	}
	select {
	case s.events <- Event{Node: node, State: st}:
	case <-ctx.Done():
	}
}
