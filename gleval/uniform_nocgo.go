//go:build tinygo || !cgo

package gleval

import "errors"

var errNoCGO = errors.New("GPU buffers require CGo and are not supported on TinyGo")

// NewUniformBuffer requires CGo.
func NewUniformBuffer(programID uint32, blockName string, binding uint32, data []byte) (*UniformBuffer, error) {
	return nil, errNoCGO
}

type UniformBuffer struct{}

func (ub *UniformBuffer) Upload(offset int, data []byte) error { return errNoCGO }

func (ub *UniformBuffer) Delete() {}
