//go:build !tinygo && cgo

package gleval

import (
	"errors"
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/soypat/glgl/v4.1-core/glgl"
)

// UniformBuffer is a GPU uniform buffer object bound to a uniform block of a
// program. It implements the upload capability of the scene buffer so dirty
// byte ranges can be copied with glBufferSubData.
type UniformBuffer struct {
	ubo     uint32
	binding uint32
	size    int
}

// NewUniformBuffer creates a uniform buffer initialized with data and binds it
// to the uniform block named blockName of the program with id programID at
// binding point binding.
// A GL context must be current.
func NewUniformBuffer(programID uint32, blockName string, binding uint32, data []byte) (*UniformBuffer, error) {
	if len(data) == 0 {
		return nil, errEmptyBuffers
	}
	blockIdx := gl.GetUniformBlockIndex(programID, gl.Str(blockName+"\x00"))
	if blockIdx == gl.INVALID_INDEX {
		return nil, glErrOrMessage(fmt.Sprintf("uniform block %q not found in program", blockName))
	}
	gl.UniformBlockBinding(programID, blockIdx, binding)

	var ub UniformBuffer
	var p runtime.Pinner
	p.Pin(&ub.ubo)
	gl.GenBuffers(1, &ub.ubo)
	p.Unpin()
	if ub.ubo == 0 {
		return nil, glErrOrMessage("creating uniform buffer got zero id")
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, ub.ubo)
	gl.BufferData(gl.UNIFORM_BUFFER, len(data), unsafe.Pointer(&data[0]), gl.DYNAMIC_DRAW)
	gl.BindBufferBase(gl.UNIFORM_BUFFER, binding, ub.ubo)
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	if err := glgl.Err(); err != nil {
		gl.DeleteBuffers(1, &ub.ubo)
		return nil, fmt.Errorf("initializing uniform buffer: %w", err)
	}
	ub.binding = binding
	ub.size = len(data)
	return &ub, nil
}

// Upload copies data into the buffer at offset.
func (ub *UniformBuffer) Upload(offset int, data []byte) error {
	if ub.ubo == 0 {
		return errors.New("upload to deleted uniform buffer")
	} else if offset < 0 || offset+len(data) > ub.size {
		return fmt.Errorf("upload range [%d,%d) out of uniform buffer size %d", offset, offset+len(data), ub.size)
	} else if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.UNIFORM_BUFFER, ub.ubo)
	gl.BufferSubData(gl.UNIFORM_BUFFER, offset, len(data), unsafe.Pointer(&data[0]))
	gl.BindBuffer(gl.UNIFORM_BUFFER, 0)
	return glgl.Err()
}

// Delete frees the GPU buffer.
func (ub *UniformBuffer) Delete() {
	if ub.ubo != 0 {
		gl.DeleteBuffers(1, &ub.ubo)
		ub.ubo = 0
	}
}

func glErrOrMessage(defaultMsg string) (err error) {
	err = glgl.Err()
	if err == nil {
		err = errors.New(defaultMsg)
	} else {
		err = fmt.Errorf("%s: %w", defaultMsg, err)
	}
	return err
}
