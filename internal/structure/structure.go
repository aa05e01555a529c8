// Package structure discretizes a thin film into a stack of homogeneous
// layers. A Structure is built once per simulation run and is read-only
// afterwards; the solver shares it freely.
package structure

import (
	"fmt"

	"github.com/ultrafast-lab/demag/internal/demag"
	"github.com/ultrafast-lab/demag/internal/material"
)

// Layer is one homogeneous slab. Position is the depth of the layer midpoint
// from the illuminated surface, in m.
type Layer struct {
	Index     int
	Thickness float64
	Position  float64
	Material  material.Properties
}

type Structure struct {
	Name   string
	Layers []Layer

	filmLayers int
}

// Build stacks n film layers contiguously from depth 0. Per-layer thickness
// is the material's lattice constant.
func Build(film material.Properties, n int) (*Structure, error) {
	return build(film, n, nil, 0)
}

// BuildOnSubstrate appends subLayers substrate layers below the film.
func BuildOnSubstrate(film material.Properties, n int, sub material.Properties, subLayers int) (*Structure, error) {
	if subLayers < 1 {
		return nil, &demag.InvalidStructureError{
			Reason: fmt.Sprintf("substrate layer count must be >= 1, got %d", subLayers),
		}
	}
	return build(film, n, &sub, subLayers)
}

func build(film material.Properties, n int, sub *material.Properties, subLayers int) (*Structure, error) {
	if n < 1 {
		return nil, &demag.InvalidStructureError{
			Reason: fmt.Sprintf("layer count must be >= 1, got %d", n),
		}
	}
	if film.LatticeConstant <= 0 {
		return nil, &demag.InvalidStructureError{
			Reason: "film layer thickness must be positive",
		}
	}

	s := &Structure{
		Name:       film.Name,
		Layers:     make([]Layer, 0, n+subLayers),
		filmLayers: n,
	}

	depth := 0.0
	for i := 0; i < n; i++ {
		dz := film.LatticeConstant
		s.Layers = append(s.Layers, Layer{
			Index:     i,
			Thickness: dz,
			Position:  depth + dz/2,
			Material:  film,
		})
		depth += dz
	}

	if sub != nil {
		if sub.LatticeConstant <= 0 {
			return nil, &demag.InvalidStructureError{
				Reason: "substrate layer thickness must be positive",
			}
		}
		for i := 0; i < subLayers; i++ {
			dz := sub.LatticeConstant
			s.Layers = append(s.Layers, Layer{
				Index:     n + i,
				Thickness: dz,
				Position:  depth + dz/2,
				Material:  *sub,
			})
			depth += dz
		}
	}

	return s, nil
}

func (s *Structure) NumLayers() int { return len(s.Layers) }

// FilmLayers returns the number of layers belonging to the magnetic film.
func (s *Structure) FilmLayers() int { return s.filmLayers }

// FilmIndices returns the indices of the film layers, ordered by depth.
func (s *Structure) FilmIndices() []int {
	idx := make([]int, s.filmLayers)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Positions returns the midpoint depth of every layer, strictly increasing.
func (s *Structure) Positions() []float64 {
	pos := make([]float64, len(s.Layers))
	for i, l := range s.Layers {
		pos[i] = l.Position
	}
	return pos
}

func (s *Structure) TotalThickness() float64 {
	total := 0.0
	for _, l := range s.Layers {
		total += l.Thickness
	}
	return total
}
