//go:build tinygo || !cgo

package rmaux

import (
	"errors"

	"github.com/soypat/rmarch"
)

func ui(shapes []rmarch.Shape, cfg UIConfig) error {
	return errors.New("require cgo for UI rendering")
}
