// Package conversion converts socket values between declared socket types.
//
// Conversions are looked up by (from type, to type, policy). A registered
// function always wins; otherwise the policy decides the fallback: the
// default policy uses cty's safe and unsafe conversions, the lenient policy
// additionally wraps single values into lists, and the strict policy
// refuses anything that is not an exact type match.
package conversion

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Policy selects how a consuming socket treats a differently typed value.
type Policy string

const (
	PolicyDefault Policy = "default"
	PolicyLenient Policy = "lenient"
	PolicyStrict  Policy = "strict"
)

// ParsePolicy maps a configuration string to a Policy. The empty string is
// the default policy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyDefault:
		return PolicyDefault, nil
	case PolicyLenient, PolicyStrict:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown conversion policy %q: must be 'default', 'lenient' or 'strict'", s)
	}
}

// ErrNoConversion is matched by every *Error.
var ErrNoConversion = errors.New("no conversion available")

// Error reports a value that could not be converted for a socket.
type Error struct {
	From   cty.Type
	To     cty.Type
	Policy Policy
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("cannot convert %s to %s under %s policy", e.From.FriendlyName(), e.To.FriendlyName(), e.Policy)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrNoConversion}
	}
	return []error{ErrNoConversion, e.Err}
}

// Func converts one value. It receives values of the registered source type.
type Func func(v cty.Value) (cty.Value, error)

type key struct {
	from   string
	to     string
	policy Policy
}

func keyOf(from, to cty.Type, policy Policy) key {
	if policy == "" {
		policy = PolicyDefault
	}
	// cty.Type is not always hashable (object types carry maps), GoString is
	// a faithful identity.
	return key{from: from.GoString(), to: to.GoString(), policy: policy}
}

// Registry is the conversion table. It is not safe for concurrent writes;
// fill it at startup.
type Registry struct {
	funcs map[key]Func
}

// NewRegistry returns a registry with the built-in lenient conversions
// between bool and number.
func NewRegistry() *Registry {
	r := &Registry{funcs: make(map[key]Func)}
	r.Register(cty.Bool, cty.Number, PolicyLenient, boolToNumber)
	r.Register(cty.Number, cty.Bool, PolicyLenient, numberToBool)
	return r
}

// Register adds a conversion. Registering the same key twice is a
// programming error and panics.
func (r *Registry) Register(from, to cty.Type, policy Policy, fn Func) {
	k := keyOf(from, to, policy)
	if _, exists := r.funcs[k]; exists {
		panic(fmt.Sprintf("conversion from %s to %s under %s policy already registered", from.FriendlyName(), to.FriendlyName(), k.policy))
	}
	slog.Debug("Registering conversion.", "from", from.FriendlyName(), "to", to.FriendlyName(), "policy", k.policy)
	r.funcs[k] = fn
}

// Lookup returns the registered function for a key, if any.
func (r *Registry) Lookup(from, to cty.Type, policy Policy) (Func, bool) {
	fn, ok := r.funcs[keyOf(from, to, policy)]
	return fn, ok
}

// Len reports the number of registered conversions.
func (r *Registry) Len() int { return len(r.funcs) }

// Convert turns v, produced by a socket of type from, into a value for a
// socket of type to.
func (r *Registry) Convert(v cty.Value, from, to cty.Type, policy Policy) (cty.Value, error) {
	if policy == "" {
		policy = PolicyDefault
	}
	if from.Equals(to) {
		return v, nil
	}
	if fn, ok := r.Lookup(from, to, policy); ok {
		out, err := fn(v)
		if err != nil {
			return cty.NilVal, &Error{From: from, To: to, Policy: policy, Err: err}
		}
		return out, nil
	}

	switch policy {
	case PolicyStrict:
		if to == cty.DynamicPseudoType {
			return v, nil
		}
		return cty.NilVal, &Error{From: from, To: to, Policy: policy}
	case PolicyLenient:
		if out, err := convert.Convert(v, to); err == nil {
			return out, nil
		}
		return wrap(v, from, to, policy)
	default:
		out, err := convert.Convert(v, to)
		if err != nil {
			return cty.NilVal, &Error{From: from, To: to, Policy: policy, Err: err}
		}
		return out, nil
	}
}

// wrap lifts a single value into a one-element list or set of the target
// element type.
func wrap(v cty.Value, from, to cty.Type, policy Policy) (cty.Value, error) {
	var build func([]cty.Value) cty.Value
	switch {
	case to.IsListType():
		build = cty.ListVal
	case to.IsSetType():
		build = cty.SetVal
	default:
		return cty.NilVal, &Error{From: from, To: to, Policy: policy}
	}
	elem, err := convert.Convert(v, to.ElementType())
	if err != nil {
		return cty.NilVal, &Error{From: from, To: to, Policy: policy, Err: err}
	}
	return build([]cty.Value{elem}), nil
}

func boolToNumber(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NullVal(cty.Number), nil
	}
	if !v.IsKnown() {
		return cty.UnknownVal(cty.Number), nil
	}
	if v.True() {
		return cty.NumberIntVal(1), nil
	}
	return cty.NumberIntVal(0), nil
}

func numberToBool(v cty.Value) (cty.Value, error) {
	if v.IsNull() {
		return cty.NullVal(cty.Bool), nil
	}
	if !v.IsKnown() {
		return cty.UnknownVal(cty.Bool), nil
	}
	return cty.BoolVal(!v.Equals(cty.Zero).True()), nil
}
