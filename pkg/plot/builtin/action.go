package builtin

import (
	"github.com/aretw0/tale/pkg/domain"
	"github.com/aretw0/tale/pkg/plot"
)

// newAction takes a single action literal: a function or a Lifecycle.
func newAction(def *plot.Definition, args []any) error {
	if len(args) != 1 {
		return &domain.InvalidNodeError{Value: args, Reason: "Action takes exactly one function or Lifecycle"}
	}
	life, err := plot.ActionLifecycle(args[0])
	if err != nil {
		return err
	}
	def.Override(life)
	return nil
}
