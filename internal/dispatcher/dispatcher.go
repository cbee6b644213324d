package dispatcher

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"codenerd/internal/logging"
)

// Registry holds every registered Operation behind a name, guarded by an
// RWMutex the same way the teacher's tool Registry protects its map --
// reads (Dispatch, Get, Names) are far more frequent than writes
// (Register happens once at startup per operation).
type Registry struct {
	mu         sync.RWMutex
	operations map[string]*Operation
}

// New returns an empty Registry ready for Register calls.
func New() *Registry {
	return &Registry{operations: make(map[string]*Operation)}
}

// Register adds an Operation under its own Name. It rejects an empty
// name, a nil handler, or a name already taken -- duplicate registration
// is a programmer error, not a runtime condition to paper over.
func (r *Registry) Register(op Operation) error {
	if op.Name == "" {
		return ErrOperationNameEmpty
	}
	if op.Handler == nil {
		return ErrHandlerNil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.operations[op.Name]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, op.Name)
	}
	opCopy := op
	r.operations[op.Name] = &opCopy
	return nil
}

// MustRegister panics on registration failure. Reserved for operations
// wired at process startup, where a bad registration is a build defect.
func (r *Registry) MustRegister(op Operation) {
	if err := r.Register(op); err != nil {
		panic(err)
	}
}

// Get returns the named Operation, or ErrOperationNotFound.
func (r *Registry) Get(name string) (*Operation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	op, ok := r.operations[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperationNotFound, name)
	}
	return op, nil
}

// Names returns every registered operation name, sorted for determinism.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.operations))
	for name := range r.operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count reports how many operations are registered.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.operations)
}

// validateParams checks params against an Operation's Schema before the
// handler ever runs, so a malformed call never reaches domain code.
func validateParams(schema Schema, params map[string]any) error {
	for _, p := range schema.Params {
		v, present := params[p.Name]
		if !present {
			if p.Required {
				return fmt.Errorf("%w: %s", ErrMissingParam, p.Name)
			}
			continue
		}
		if !typeMatches(p.Type, v) {
			return fmt.Errorf("%w: %s expects %s", ErrInvalidParamType, p.Name, p.Type)
		}
	}
	return nil
}

func typeMatches(want ParamType, v any) bool {
	switch want {
	case ParamString:
		_, ok := v.(string)
		return ok
	case ParamInt:
		switch v.(type) {
		case int, int32, int64:
			return true
		default:
			return false
		}
	case ParamFloat:
		switch v.(type) {
		case float32, float64, int, int64:
			return true
		default:
			return false
		}
	case ParamBool:
		_, ok := v.(bool)
		return ok
	case ParamObject:
		_, ok := v.(map[string]any)
		return ok
	default:
		return true
	}
}

// Dispatch looks up name, validates params against its Schema, and runs
// its handler with panic containment: a handler panic is recovered and
// reported as an internal error, never as a crash and never carrying the
// raw panic value or a stack trace back to the caller.
func (r *Registry) Dispatch(ctx context.Context, name string, params map[string]any) (result any, err error) {
	op, getErr := r.Get(name)
	if getErr != nil {
		return nil, newError(CodeMethodNotFound, name, getErr)
	}
	if verr := validateParams(op.Schema, params); verr != nil {
		return nil, newError(CodeInvalidParams, name, verr)
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Get(logging.CategoryDispatcher).Error("operation %s panicked: %v", name, rec)
			err = newError(CodeInternal, name, fmt.Errorf("operation panicked"))
			result = nil
		}
	}()

	out, handlerErr := op.Handler(ctx, params)
	if handlerErr != nil {
		return nil, newError(CodeInternal, name, handlerErr)
	}
	return out, nil
}
