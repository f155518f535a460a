package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/nodegridgo/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Validate performs a parity check between each kind's registration and the
// nodes its factory builds. Settings structs must imply a cty object type,
// and a node built from default settings must report the registered kind
// name. Reroute-style kinds must expose exactly one input and one output.
func (r *Registry) Validate(ctx context.Context) error {
	var errs []string
	logger := ctxlog.FromContext(ctx)

	for _, name := range r.Kinds() {
		k := r.kinds[name]

		if k.NewSettings != nil {
			ty, err := gocty.ImpliedType(k.NewSettings())
			if err != nil {
				errs = append(errs, fmt.Sprintf("kind '%s': could not imply cty type from settings struct: %v", name, err))
				continue
			}
			if !ty.IsObjectType() {
				errs = append(errs, fmt.Sprintf("kind '%s': settings must be a struct, got %s", name, ty.FriendlyName()))
				continue
			}
		}

		n, err := r.NewNode("validate", name, cty.DynamicPseudoType, cty.NullVal(cty.DynamicPseudoType))
		if err != nil {
			// Kinds with required settings cannot be probed with defaults.
			logger.Debug("Skipping build check for kind.", "kind", name, "error", err)
			continue
		}
		if n.Kind() != name {
			errs = append(errs, fmt.Sprintf("kind '%s': factory builds nodes of kind '%s'", name, n.Kind()))
		}
		if n.PassThrough() && (len(n.Inputs()) != 1 || len(n.Outputs()) != 1) {
			errs = append(errs, fmt.Sprintf("kind '%s': pass-through nodes need exactly one input and one output, got %d and %d", name, len(n.Inputs()), len(n.Outputs())))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("registry validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}
