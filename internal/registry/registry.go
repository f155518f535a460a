package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/vk/nodegridgo/internal/node"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	ErrUnknownKind     = errors.New("unknown node kind")
	ErrInvalidSettings = errors.New("invalid settings")
)

// Module is the interface that all catalog modules must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Config is what a factory receives for one node.
type Config struct {
	ID string
	// Type is the optional value type declared for the node, or
	// cty.DynamicPseudoType.
	Type cty.Type
	// Settings is the pointer returned by the kind's NewSettings, filled
	// from the graph file. It is nil for kinds without settings.
	Settings any
}

// Kind holds the compiled Go parts of one node kind.
type Kind struct {
	Name string
	// NewSettings returns a pointer to a settings struct with `cty` tags,
	// pre-filled with defaults. Nil means the kind takes no settings.
	NewSettings func() any
	Build       func(cfg Config) (node.Node, error)
}

// Registry holds every registered node kind for a single application
// instance.
type Registry struct {
	kinds map[string]*Kind
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Load creates a Registry and registers every module into it.
func Load(mods ...Module) *Registry {
	r := New()
	for _, m := range mods {
		m.Register(r)
	}
	return r
}

// RegisterKind registers a node kind. It panics on a duplicate name or an
// incomplete definition, both of which are programming errors.
func (r *Registry) RegisterKind(k *Kind) {
	if k == nil || k.Name == "" || k.Build == nil {
		panic("node kind must have a name and a Build function")
	}
	if _, exists := r.kinds[k.Name]; exists {
		panic(fmt.Sprintf("node kind with name '%s' already registered", k.Name))
	}
	slog.Debug("Registering node kind.", "name", k.Name)
	r.kinds[k.Name] = k
}

// Lookup returns the registered kind.
func (r *Registry) Lookup(name string) (*Kind, bool) {
	k, ok := r.kinds[name]
	return k, ok
}

// Kinds returns the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	names := make([]string, 0, len(r.kinds))
	for name := range r.kinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewNode builds a node of the given kind. settings is an object value (or
// null) whose attributes override the kind's defaults.
func (r *Registry) NewNode(id, kind string, typ cty.Type, settings cty.Value) (node.Node, error) {
	k, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("node %q: %w %q (known: %s)", id, ErrUnknownKind, kind, strings.Join(r.Kinds(), ", "))
	}
	if typ == cty.NilType {
		typ = cty.DynamicPseudoType
	}
	decoded, err := decodeSettings(k, settings)
	if err != nil {
		return nil, fmt.Errorf("node %q (%s): %w", id, kind, err)
	}
	n, err := k.Build(Config{ID: id, Type: typ, Settings: decoded})
	if err != nil {
		return nil, fmt.Errorf("node %q (%s): %w", id, kind, err)
	}
	return n, nil
}

// decodeSettings merges settings over the kind's defaults and decodes the
// result into a fresh settings struct.
func decodeSettings(k *Kind, settings cty.Value) (any, error) {
	given := map[string]cty.Value{}
	if !settings.IsNull() {
		if !settings.IsWhollyKnown() {
			return nil, fmt.Errorf("%w: settings must be known values", ErrInvalidSettings)
		}
		if !settings.Type().IsObjectType() && !settings.Type().IsMapType() {
			return nil, fmt.Errorf("%w: settings must be an object, got %s", ErrInvalidSettings, settings.Type().FriendlyName())
		}
		given = settings.AsValueMap()
	}

	if k.NewSettings == nil {
		if len(given) > 0 {
			return nil, fmt.Errorf("%w: kind takes no settings", ErrInvalidSettings)
		}
		return nil, nil
	}

	target := k.NewSettings()
	ty, err := gocty.ImpliedType(target)
	if err != nil {
		return nil, fmt.Errorf("settings struct: %w", err)
	}
	defaults, err := gocty.ToCtyValue(target, ty)
	if err != nil {
		return nil, fmt.Errorf("settings defaults: %w", err)
	}

	var unknown []string
	for name := range given {
		if !ty.HasAttribute(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		slices.Sort(unknown)
		return nil, fmt.Errorf("%w: unsupported settings %s", ErrInvalidSettings, strings.Join(unknown, ", "))
	}

	merged := defaults.AsValueMap()
	if merged == nil {
		merged = make(map[string]cty.Value)
	}
	for name, attrType := range ty.AttributeTypes() {
		v, ok := given[name]
		if !ok || v.IsNull() {
			continue
		}
		cv, err := convert.Convert(v, attrType)
		if err != nil {
			return nil, fmt.Errorf("%w: setting %q: %s", ErrInvalidSettings, name, err)
		}
		merged[name] = cv
	}
	if err := gocty.FromCtyValue(cty.ObjectVal(merged), target); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidSettings, err)
	}
	return target, nil
}
