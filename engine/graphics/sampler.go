package graphics

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/engine/renderer"
)

// Sampler owns a renderer sampler bound to sampler slots (WGSL group 2, binding = slot).
type Sampler struct {
	r renderer.Renderer
	h renderer.SamplerHandle
}

// NewSampler creates a filtering sampler. It panics on failure.
func NewSampler(r renderer.Renderer, filter renderer.Filter, address renderer.AddressMode) *Sampler {
	return newSampler(r, renderer.SamplerDesc{
		Label:   fmt.Sprintf("Sampler %d/%d", filter, address),
		Filter:  filter,
		Address: address,
	})
}

// NewComparisonSampler creates a less-equal depth comparison sampler for shadow map lookups.
func NewComparisonSampler(r renderer.Renderer) *Sampler {
	return newSampler(r, renderer.SamplerDesc{
		Label:   "Comparison Sampler",
		Filter:  renderer.FilterLinear,
		Address: renderer.AddressClamp,
		Compare: true,
	})
}

func newSampler(r renderer.Renderer, desc renderer.SamplerDesc) *Sampler {
	h, err := r.CreateSampler(desc)
	if err != nil {
		panic(fmt.Sprintf("graphics: failed to create sampler: %v", err))
	}
	return &Sampler{r: r, h: h}
}

func (s *Sampler) BindVS(slot int) {
	s.r.BindSampler(renderer.StageVertex, slot, s.h)
}

func (s *Sampler) BindPS(slot int) {
	s.r.BindSampler(renderer.StagePixel, slot, s.h)
}

func (s *Sampler) Handle() renderer.SamplerHandle { return s.h }

func (s *Sampler) Terminate() {
	if s == nil || s.h == 0 {
		return
	}
	s.r.DestroySampler(s.h)
	s.h = 0
}
