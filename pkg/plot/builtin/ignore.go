package builtin

import "github.com/aretw0/tale/pkg/plot"

// updateIgnore advances the underlying sequence but always reports done,
// so an enclosing Group does not wait for it.
func updateIgnore(in *plot.Instance) (bool, error) {
	base := in.Definition().Base()
	if base.Update == nil {
		return false, nil
	}
	_, err := base.Update(in)
	return false, err
}
