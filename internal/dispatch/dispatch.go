// Package dispatch implements the instruction dispatcher (component G): a
// name-keyed Registry of opcode Handlers, modeled directly on the teacher's
// decorators.Registry — a map guarded by sync.RWMutex, plus package-level
// convenience wrappers over one global instance.
package dispatch

import (
	"sort"
	"sync"

	"github.com/tzstack/michelvm/internal/ir"
	"github.com/tzstack/michelvm/internal/stack"
	"github.com/tzstack/michelvm/internal/vmctx"
	"github.com/tzstack/michelvm/internal/vmerrors"
)

// RunFunc lets a handler recurse into the execution driver for a branch or
// block operand (IF's two branches, MAP/ITER's body) without this package
// importing internal/vm — internal/vm imports dispatch, not the reverse.
type RunFunc func(nodes []ir.Node, st stack.Stack, ctx vmctx.Context) (stack.Stack, error)

// Request is everything a Handler needs to execute one instruction.
type Request struct {
	Stack stack.Stack
	Args  []ir.Arg
	Ctx   vmctx.Context
	Run   RunFunc
}

// Response is a handler's successful result: the rewritten stack and the
// context to continue execution with (handlers that don't touch the
// context just return the one they were given).
type Response struct {
	Stack stack.Stack
	Ctx   vmctx.Context
}

// Handler implements one opcode's depth-check/type-check/compute/rewrite
// prologue (§4.H).
type Handler func(Request) (Response, error)

// Registry is a name-keyed table of opcode Handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// Register adds or replaces the handler for opcode name.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Get retrieves the handler registered for name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// MustGet retrieves the handler for name, or an UnknownOpcode error (with a
// fuzzy "did you mean" suggestion drawn from every registered name).
func (r *Registry) MustGet(name string) (Handler, error) {
	h, ok := r.Get(name)
	if !ok {
		return nil, vmerrors.UnknownOpcode(name, r.Names())
	}
	return h, nil
}

// Names returns every registered opcode name, sorted, for diagnostics.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// global is the package-level registry every opcode file's init() wires
// itself into, mirroring decorators.RegisterValue/RegisterAction's
// convenience layer over a single shared instance.
var global = NewRegistry()

// Register adds or replaces a handler in the global registry.
func Register(name string, h Handler) { global.Register(name, h) }

// Get retrieves a handler from the global registry.
func Get(name string) (Handler, bool) { return global.Get(name) }

// MustGet retrieves a handler from the global registry, or an error.
func MustGet(name string) (Handler, error) { return global.MustGet(name) }

// Names returns every opcode name registered in the global registry.
func Names() []string { return global.Names() }
