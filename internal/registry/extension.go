package registry

import (
	"fmt"
)

// Extension is a named callable exposed next to the renderer classes.
// InputParams and CallParams are the parameter lists shown by generated
// wrappers: the wrapper's own signature and what it forwards.
type Extension struct {
	Name        string
	InputParams string
	CallParams  string
	Comment     string
	Call        func(args []any) (any, error)
}

// RegisterExtension adds an extension and returns its id.
func (r *Registry) RegisterExtension(e Extension) int {
	r.extensions = append(r.extensions, e)
	return len(r.extensions) - 1
}

func (r *Registry) Extensions() []Extension {
	return append([]Extension(nil), r.extensions...)
}

func (r *Registry) LookupExtension(name string) (int, bool) {
	for i := len(r.extensions) - 1; i >= 0; i-- {
		if r.extensions[i].Name == name {
			return i, true
		}
	}
	return 0, false
}

// CallExtension invokes the extension with the given id.
func (r *Registry) CallExtension(id int, args ...any) (any, error) {
	if id < 0 || id >= len(r.extensions) {
		return nil, fmt.Errorf("%w: extension %d", ErrInvalidHandle, id)
	}
	e := r.extensions[id]
	if e.Call == nil {
		return nil, nil
	}
	out, err := e.Call(args)
	if err != nil {
		return nil, fmt.Errorf("registry: extension %s: %w", e.Name, err)
	}
	return out, nil
}
