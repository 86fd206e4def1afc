package bus

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"sync"
	"time"

	"github.com/emrgen/programtree/internal/command"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNoHandler is returned when no handler is registered for a command.
	ErrNoHandler = errors.New("no handler registered for command")
	// ErrHandlerExists is returned when a second handler is registered for a command.
	ErrHandlerExists = errors.New("handler already registered for command")
	// ErrHandlerPanic is returned when a handler panics.
	ErrHandlerPanic = errors.New("command handler panicked")
)

// Handler executes one command and returns its result.
type Handler func(ctx context.Context, cmd command.Command) (any, error)

// Middleware wraps every handler of the bus.
type Middleware func(next Handler) Handler

type correlationKey struct{}

// CorrelationID returns the id attached to the context by Invoke.
func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}

// WithCorrelationID attaches id to ctx, for callers that already have a request id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// MessageBus dispatches commands synchronously to the handler registered for
// their name. Handlers are registered at startup.
type MessageBus struct {
	mu          sync.RWMutex
	handlers    map[string]Handler
	middlewares []Middleware
}

func NewMessageBus(middlewares ...Middleware) *MessageBus {
	return &MessageBus{
		handlers:    make(map[string]Handler),
		middlewares: append([]Middleware{Recover()}, middlewares...),
	}
}

// Register binds h to the command name.
func (b *MessageBus) Register(name string, h Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.handlers[name]; ok {
		return fmt.Errorf("%w: %s", ErrHandlerExists, name)
	}
	for i := len(b.middlewares) - 1; i >= 0; i-- {
		h = b.middlewares[i](h)
	}
	b.handlers[name] = h
	return nil
}

// Handle registers a typed handler for the commands of type C.
func Handle[C command.Command](b *MessageBus, h func(ctx context.Context, cmd C) (any, error)) error {
	var zero C
	return b.Register(zero.CommandName(), func(ctx context.Context, cmd command.Command) (any, error) {
		switch typed := any(cmd).(type) {
		case C:
			return h(ctx, typed)
		case *C:
			return h(ctx, *typed)
		}
		return nil, fmt.Errorf("command %s has type %T", cmd.CommandName(), cmd)
	})
}

// Commands returns the registered command names, sorted.
func (b *MessageBus) Commands() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the handler of cmd. A correlation id is attached to the context
// unless the caller already set one.
func (b *MessageBus) Invoke(ctx context.Context, cmd command.Command) (any, error) {
	b.mu.RLock()
	h, ok := b.handlers[cmd.CommandName()]
	b.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, cmd.CommandName())
	}

	if CorrelationID(ctx) == "" {
		ctx = WithCorrelationID(ctx, uuid.New().String())
	}
	return h(ctx, cmd)
}

// Recover turns a handler panic into ErrHandlerPanic.
func Recover() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, cmd command.Command) (result any, err error) {
			defer func() {
				if r := recover(); r != nil {
					logrus.Errorf("command %s panicked: %v\n%s", cmd.CommandName(), r, debug.Stack())
					err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
				}
			}()
			return next(ctx, cmd)
		}
	}
}

// Logging logs every dispatch with its correlation id and duration.
func Logging() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, cmd command.Command) (any, error) {
			start := time.Now()
			result, err := next(ctx, cmd)

			entry := logrus.WithFields(logrus.Fields{
				"command":        cmd.CommandName(),
				"correlation_id": CorrelationID(ctx),
				"duration":       time.Since(start),
			})
			if err != nil {
				entry.WithError(err).Warn("command failed")
			} else {
				entry.Info("command handled")
			}
			return result, err
		}
	}
}
