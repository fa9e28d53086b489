package program

import (
	"fmt"

	"github.com/tliron/commonlog"
)

// DefaultMaxCallDepth bounds nested invocations through an Executor.
const DefaultMaxCallDepth = 4096

// NoSuchMethodSelector is the name of the user-level fallback handler.
// Handlers are instance methods taking one argument, the *Invocation.
const NoSuchMethodSelector = "noSuchMethod"

var execLog = commonlog.GetLogger("program.executor")

// Executor runs function bodies on behalf of one execution context. It is
// not safe for concurrent use: an execution context has a single mutator.
type Executor struct {
	store    *Store
	maxDepth int
	depth    int
}

// NewExecutor creates an executor over store.
func NewExecutor(store *Store) *Executor {
	return &Executor{store: store, maxDepth: DefaultMaxCallDepth}
}

// SetMaxCallDepth changes the nesting limit. Values <= 0 restore the
// default.
func (e *Executor) SetMaxCallDepth(n int) {
	if n <= 0 {
		n = DefaultMaxCallDepth
	}
	e.maxDepth = n
}

// Depth returns the current nesting depth.
func (e *Executor) Depth() int { return e.depth }

// Invoke runs fn with args (implicit receiver first). Arity is the
// caller's responsibility.
func (e *Executor) Invoke(fn *Function, args []Value) (Value, error) {
	if fn.CompileErr != nil {
		return nil, fn.CompileErr
	}
	if fn.Body == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrAbstractMethod, fn.DisplayName())
	}
	if e.depth >= e.maxDepth {
		return nil, ErrStackOverflow
	}
	e.depth++
	defer func() { e.depth-- }()
	return fn.Body(args)
}

// InvokeClosure calls c with the explicit args. A bound receiver is
// prepended for torn-off instance methods. Argument count mismatches go
// through the noSuchMethod fallback of the closure.
func (e *Executor) InvokeClosure(c *Closure, args []Value) (Value, error) {
	full := args
	if c.Function.NumImplicitParameters() > 0 {
		full = make([]Value, 0, len(args)+1)
		full = append(full, c.Receiver)
		full = append(full, args...)
	}
	if !c.Function.AreValidArguments(len(full)) {
		withClosure := append([]Value{c}, args...)
		return e.InvokeNoSuchMethod(c, "call", withClosure)
	}
	return e.Invoke(c.Function, full)
}

// InvokeNoSuchMethod routes a failed dynamic call to the receiver's
// noSuchMethod handler. args holds the receiver followed by the explicit
// arguments. Without a user handler the result is a *NoSuchMethodError.
func (e *Executor) InvokeNoSuchMethod(receiver Value, name string, args []Value) (Value, error) {
	explicit := args
	if len(explicit) > 0 {
		explicit = explicit[1:]
	}
	inv := NewInvocation(name, explicit)
	if handler := e.lookupHandler(receiver); handler != nil {
		execLog.Debugf("noSuchMethod handler for %s on %s", inv, receiverClassName(receiver))
		return e.Invoke(handler, []Value{receiver, inv})
	}
	return nil, &NoSuchMethodError{
		Receiver:       receiver,
		MemberName:     inv.MemberName,
		InvocationType: EncodeInvocationType(CallDynamic, inv.Member),
		Arguments:      explicit,
	}
}

func (e *Executor) lookupHandler(receiver Value) *Function {
	for c := e.store.ClassOf(receiver); c != nil; c = c.SuperClass() {
		fn := c.LookupDynamicFunction(NoSuchMethodSelector)
		if fn == nil {
			continue
		}
		if !fn.IsVisible() || !fn.AreValidArguments(2) {
			return nil
		}
		return fn
	}
	return nil
}
