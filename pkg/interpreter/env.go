package interpreter

import "github.com/kobylang/koby/pkg/diagnostics"

// Env is a lexically-scoped binding table. Each Env chains to a parent
// (nil at the global scope); lookups and assignments walk the chain.
// Closures keep a reference to the Env active when they were created, so
// an Env and the closures it encloses can form a reference cycle — Go's
// garbage collector handles that without help.
type Env struct {
	values map[string]Value
	parent *Env
}

// NewEnv creates a scope chained to parent (nil for the global scope).
func NewEnv(parent *Env) *Env {
	return &Env{values: make(map[string]Value), parent: parent}
}

// Define introduces name in this scope. Redeclaring a name already
// present in this exact scope is a DuplicateVar error; shadowing a name
// from an enclosing scope is allowed.
func (e *Env) Define(name string, v Value, line int) error {
	if _, exists := e.values[name]; exists {
		return &diagnostics.RuntimeError{
			Code:    diagnostics.DuplicateVar,
			Message: "Variable '" + name + "' is already declared in this scope.",
			Line:    line,
		}
	}
	e.values[name] = v
	return nil
}

// Get resolves name by walking the scope chain outward.
func (e *Env) Get(name string, line int) (Value, error) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.values[name]; ok {
			return v, nil
		}
	}
	return nil, &diagnostics.RuntimeError{
		Code:    diagnostics.UndefinedVar,
		Message: "Undefined variable '" + name + "'.",
		Line:    line,
	}
}

// Assign rebinds an existing name, walking the scope chain outward. It
// does not create a new binding: assigning to an undeclared name fails.
func (e *Env) Assign(name string, v Value, line int) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.values[name]; ok {
			env.values[name] = v
			return nil
		}
	}
	return &diagnostics.RuntimeError{
		Code:    diagnostics.UndefinedVar,
		Message: "Undefined variable '" + name + "'.",
		Line:    line,
	}
}

// Remove deletes name from this exact scope, if present. Removing an
// absent name is a silent no-op.
func (e *Env) Remove(name string) {
	delete(e.values, name)
}
