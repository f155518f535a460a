package hcl

import (
	"github.com/hashicorp/hcl/v2"
)

// isExprDefined reports whether an optional attribute was written in the
// file. gohcl fills omitted expression fields with a zero-width synthetic
// expression rather than nil.
func isExprDefined(expr hcl.Expression) bool {
	if expr == nil {
		return false
	}
	r := expr.Range()
	return r.End.Byte > r.Start.Byte
}
