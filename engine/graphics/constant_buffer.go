package graphics

import (
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// ConstantBuffer is a raw uniform buffer of fixed size bound to shader constant slots
// (WGSL group 0, binding = slot).
type ConstantBuffer struct {
	r    renderer.Renderer
	h    renderer.BufferHandle
	size int
}

// NewConstantBuffer creates a zeroed constant buffer of size bytes. It panics on failure.
func NewConstantBuffer(r renderer.Renderer, size int) *ConstantBuffer {
	if size <= 0 {
		panic(fmt.Sprintf("graphics: invalid constant buffer size %d", size))
	}
	h, err := r.CreateBuffer(renderer.BufferKindConstant, "Constant Buffer", make([]byte, size))
	if err != nil {
		panic(fmt.Sprintf("graphics: failed to create constant buffer: %v", err))
	}
	return &ConstantBuffer{r: r, h: h, size: size}
}

// Update replaces the buffer contents. Draws issued after the call see the new data. It panics
// if data is larger than the buffer.
func (c *ConstantBuffer) Update(data []byte) {
	if len(data) > c.size {
		panic(fmt.Sprintf("graphics: constant buffer update of %d bytes exceeds its size of %d", len(data), c.size))
	}
	c.r.WriteBuffer(c.h, data)
}

// BindVS attaches the buffer to a vertex stage slot.
func (c *ConstantBuffer) BindVS(slot int) {
	c.r.BindConstantBuffer(renderer.StageVertex, slot, c.h)
}

// BindPS attaches the buffer to a pixel stage slot.
func (c *ConstantBuffer) BindPS(slot int) {
	c.r.BindConstantBuffer(renderer.StagePixel, slot, c.h)
}

// Handle returns the renderer handle of the buffer.
func (c *ConstantBuffer) Handle() renderer.BufferHandle { return c.h }

// Size returns the buffer size in bytes.
func (c *ConstantBuffer) Size() int { return c.size }

// Terminate releases the buffer.
func (c *ConstantBuffer) Terminate() {
	if c == nil || c.h == 0 {
		return
	}
	c.r.DestroyBuffer(c.h)
	c.h = 0
}

// TypedConstantBuffer mirrors a CPU struct T on the GPU. T must follow the WGSL uniform layout
// rules (16-byte aligned members, size a multiple of 16).
type TypedConstantBuffer[T any] struct {
	cb *ConstantBuffer
}

// NewTypedConstantBuffer creates a constant buffer sized for T.
func NewTypedConstantBuffer[T any](r renderer.Renderer) *TypedConstantBuffer[T] {
	var zero T
	return &TypedConstantBuffer[T]{cb: NewConstantBuffer(r, int(unsafe.Sizeof(zero)))}
}

// Update uploads v.
func (t *TypedConstantBuffer[T]) Update(v T) {
	t.cb.Update(common.StructToBytes(&v))
}

func (t *TypedConstantBuffer[T]) BindVS(slot int) { t.cb.BindVS(slot) }

func (t *TypedConstantBuffer[T]) BindPS(slot int) { t.cb.BindPS(slot) }

func (t *TypedConstantBuffer[T]) Handle() renderer.BufferHandle { return t.cb.Handle() }

func (t *TypedConstantBuffer[T]) Terminate() { t.cb.Terminate() }
