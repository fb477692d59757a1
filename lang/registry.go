package lang

import (
	"iter"
	"log/slog"
	"maps"
	"slices"
	"strings"
)

// LocalePrefix namespaces the components of a locale overlay.
const LocalePrefix = "locales."

// Function is a native function callable from templates as
// $name(key=@path, key=&component).
//
// The renderer r can render components on the function's behalf. A returned
// error other than a [*RenderError] is reported as a FunctionError.
type Function func(r *Renderer, args Args) (string, error)

// Args holds the resolved arguments of a function call.
type Args map[string]ArgValue

// JSON returns the value of a JSON argument that resolved to a variable.
func (a Args) JSON(name string) (Value, bool) {
	arg, ok := a[name]
	if !ok || arg.Kind != ArgJSON || arg.JSON == nil {
		return Value{}, false
	}

	return *arg.JSON, true
}

// Component returns the component of a component argument that resolved.
func (a Args) Component(name string) (*Component, bool) {
	arg, ok := a[name]
	if !ok || arg.Kind != ArgComp || arg.Component == nil {
		return nil, false
	}

	return arg.Component, true
}

// Registry maps names to components and native functions.
//
// A registry is filled before rendering and sealed when rendering starts;
// from then on it is read-only and registration fails.
type Registry struct {
	components map[string]*Component
	functions  map[string]Function
	sealed     bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		components: make(map[string]*Component),
		functions:  make(map[string]Function),
	}
}

// Define registers components under their own names.
func (r *Registry) Define(components ...*Component) error {
	for _, c := range components {
		if err := r.define(c.Name, c); err != nil {
			return err
		}
	}

	return nil
}

// DefineLocale registers overlay components under [LocalePrefix] plus
// their names.
func (r *Registry) DefineLocale(components ...*Component) error {
	for _, c := range components {
		if err := r.define(LocalePrefix+c.Name, c); err != nil {
			return err
		}
	}

	return nil
}

func (r *Registry) define(key string, c *Component) error {
	if r.sealed {
		return ErrRegistrySealed.With(slog.String("component", key))
	}

	if prev, ok := r.components[key]; ok {
		return ErrDuplicateComponent.
			With(slog.String("component", key)).
			Wrap(NewError(duplicateLocation(key, prev.Span, c.Span)))
	}

	r.components[key] = c

	return nil
}

func duplicateLocation(name string, prev, next Span) string {
	var b strings.Builder

	b.WriteString(name)

	if next.Source != nil {
		line, col := next.Source.Position(next.Offset)
		b.WriteString(" at " + location(next.Source.Name, line, col))
	}

	if prev.Source != nil {
		line, col := prev.Source.Position(prev.Offset)
		b.WriteString(", first defined at " + location(prev.Source.Name, line, col))
	}

	return b.String()
}

// Register adds a native function.
func (r *Registry) Register(name string, fn Function) error {
	if r.sealed {
		return ErrRegistrySealed.With(slog.String("function", name))
	}

	if _, ok := r.functions[name]; ok {
		return ErrDuplicateFunction.
			With(slog.String("function", name)).
			Wrap(NewError(name))
	}

	r.functions[name] = fn

	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() { r.sealed = true }

// Sealed reports whether the registry is read-only.
func (r *Registry) Sealed() bool { return r.sealed }

// Component returns the component called name, preferring a locale overlay
// component of the same name.
func (r *Registry) Component(name string) (*Component, bool) {
	if c, ok := r.components[LocalePrefix+name]; ok {
		return c, true
	}

	c, ok := r.components[name]

	return c, ok
}

// Function returns the native function called name.
func (r *Registry) Function(name string) (Function, bool) {
	fn, ok := r.functions[name]

	return fn, ok
}

// ComponentNames returns the registered component keys in sorted order,
// including namespaced overlay keys.
func (r *Registry) ComponentNames() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(r.components)))
}

// FunctionNames returns the registered function names in sorted order.
func (r *Registry) FunctionNames() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(r.functions)))
}
