// Package glbuild writes the GLSL programs that ray march a scene on the GPU
// and holds the std140 scene block those programs read. The GLSL struct and
// uniform block declarations are generated from the same Go constants used
// to encode the scene so both sides agree on the layout.
package glbuild

import (
	"bytes"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/soypat/geometry/ms3"
	"github.com/soypat/rmarch"
)

const VersionStr = "#version 410\n"

// ShaderObject is a GLSL function needed by the ray marching program.
type ShaderObject struct {
	// NamePtr is the name of the function inside of its source.
	NamePtr    []byte
	funcSource []byte
}

// MakeShaderFunction parses a GLSL function definition. The definition must
// start with the return type followed by the function name.
func MakeShaderFunction(shaderDef []byte) (sf ShaderObject, err error) {
	shaderDef = bytes.TrimSpace(shaderDef)
	fnNameEnd := bytes.IndexByte(shaderDef, '(')
	fnNameStart := bytes.IndexByte(shaderDef, ' ')
	if fnNameEnd < 0 || fnNameStart < 0 || fnNameStart > fnNameEnd {
		return ShaderObject{}, errors.New("unable to parse function name")
	}
	name := shaderDef[fnNameStart:fnNameEnd]
	name = bytes.TrimSpace(name)
	if len(name) == 0 {
		return ShaderObject{}, errors.New("empty function name")
	}
	sf = ShaderObject{
		NamePtr:    name,
		funcSource: shaderDef,
	}
	return sf, nil
}

// Source returns the GLSL function definition.
func (obj ShaderObject) Source() []byte { return obj.funcSource }

func (obj ShaderObject) Validate() error {
	if len(obj.NamePtr) == 0 {
		return errors.New("shader object zero-length name")
	} else if len(obj.funcSource) == 0 {
		return fmt.Errorf("shader function %q has no source", obj.NamePtr)
	}
	return nil
}

//go:embed vertex.glsl
var vertexMain []byte

//go:embed fragment.glsl
var fragmentMain []byte

// Programmer generates the vertex and fragment shaders of the ray marcher.
type Programmer struct {
	scratch []byte
	// names maps function names to body hashes for checking duplicates.
	names   map[uint64]uint64
	marcher rmarch.Marcher
}

// NewDefaultProgrammer returns a Programmer that marches with [rmarch.DefaultMarcher] limits.
func NewDefaultProgrammer() *Programmer {
	return &Programmer{
		scratch: make([]byte, 0, 1024),
		names:   make(map[uint64]uint64),
		marcher: rmarch.DefaultMarcher(),
	}
}

// SetMarcher sets the march limits compiled into the fragment shader.
func (p *Programmer) SetMarcher(m rmarch.Marcher) error {
	if err := m.Validate(); err != nil {
		return err
	}
	p.marcher = m
	return nil
}

// WriteVertexShader writes the full screen quad vertex shader. The quad is
// drawn as a 4 vertex triangle strip with no vertex attributes.
func (p *Programmer) WriteVertexShader(w io.Writer) (int, error) {
	p.scratch = append(p.scratch[:0], VersionStr...)
	p.scratch = append(p.scratch, vertexMain...)
	return w.Write(p.scratch)
}

// WriteFragmentShader writes the ray marching fragment shader. funcs are the
// GLSL functions the program calls, in dependency order. Functions repeated
// with identical source are written once.
func (p *Programmer) WriteFragmentShader(w io.Writer, funcs []ShaderObject) (n int, err error) {
	clear(p.names)
	p.scratch = append(p.scratch[:0], VersionStr...)
	p.scratch = AppendLayoutDefines(p.scratch)
	p.scratch = p.appendMarchDefines(p.scratch)
	p.scratch = append(p.scratch, '\n')
	p.scratch = AppendSceneBlockDecl(p.scratch)
	ngot, err := w.Write(p.scratch)
	n += ngot
	if err != nil {
		return n, err
	}
	for _, fn := range funcs {
		if err = fn.Validate(); err != nil {
			return n, err
		}
		nameHash := hash(fn.NamePtr, 0)
		bodyHash := hash(fn.funcSource, nameHash)
		gotBodyHash, nameConflict := p.names[nameHash]
		if nameConflict {
			if gotBodyHash == bodyHash {
				continue // Already written.
			}
			return n, fmt.Errorf("duplicate shader function name %q with distinct bodies", fn.NamePtr)
		}
		p.names[nameHash] = bodyHash
		p.scratch = append(p.scratch[:0], '\n')
		p.scratch = append(p.scratch, fn.funcSource...)
		p.scratch = append(p.scratch, '\n')
		ngot, err = w.Write(p.scratch)
		n += ngot
		if err != nil {
			return n, err
		}
	}
	p.scratch = append(p.scratch[:0], '\n')
	p.scratch = append(p.scratch, fragmentMain...)
	ngot, err = w.Write(p.scratch)
	n += ngot
	return n, err
}

func (p *Programmer) appendMarchDefines(b []byte) []byte {
	m := p.marcher
	b = appendFloatDefine(b, "MAX_DST", m.MaxDistance)
	b = appendFloatDefine(b, "EPSILON", m.Epsilon)
	b = appendFloatDefine(b, "SHADOW_BIAS", 50*m.Epsilon)
	b = appendFloatDefine(b, "SHADOW_INTENSITY", rmarch.ShadowIntensity)
	b = appendFloatDefine(b, "HIGHLIGHT_AMOUNT", rmarch.HighlightAmount)
	b = AppendDefineDecl(b, "HIGHLIGHT_COLOR", string(appendVec3(nil, rmarch.HighlightTint())))
	return b
}

func appendFloatDefine(b []byte, name string, v float32) []byte {
	return AppendDefineDecl(b, name, string(AppendFloat(nil, '-', '.', v)))
}

func appendVec3(b []byte, v ms3.Vec) []byte {
	b = append(b, "vec3("...)
	arr := v.Array()
	b = AppendFloats(b, ',', '-', '.', arr[:]...)
	return append(b, ')')
}

func AppendDefineDecl(b []byte, aliasToDefine, aliasReplace string) []byte {
	b = append(b, "#define "...)
	b = append(b, aliasToDefine...)
	b = append(b, ' ')
	b = append(b, aliasReplace...)
	b = append(b, '\n')
	return b
}

const decimalDigits = 9

// AppendFloat appends v as a GLSL float literal with trailing zeros trimmed.
func AppendFloat(b []byte, neg, decimal byte, v float32) []byte {
	start := len(b)
	b = strconv.AppendFloat(b, float64(v), 'f', decimalDigits, 32)
	idx := bytes.IndexByte(b[start:], '.')
	if decimal != '.' && idx >= 0 {
		b[start+idx] = decimal
	}
	if b[start] == '-' {
		b[start] = neg
	}
	// Finally trim zeroes.
	end := len(b)
	for i := len(b) - 1; idx >= 0 && i > idx+start && b[i] == '0'; i-- {
		end--
	}
	return b[:end]
}

func AppendFloats(b []byte, sep, neg, decimal byte, s ...float32) []byte {
	for i, v := range s {
		b = AppendFloat(b, neg, decimal, v)
		if sep != 0 && i != len(s)-1 {
			b = append(b, sep)
		}
	}
	return b
}

func hash(b []byte, in uint64) uint64 {
	x := in
	for len(b) >= 8 {
		x ^= binary.LittleEndian.Uint64(b)
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
		b = b[8:]
	}
	if len(b) > 0 {
		var buf [8]byte
		copy(buf[:], b)
		x ^= binary.LittleEndian.Uint64(buf[:])
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
	}
	return x
}
