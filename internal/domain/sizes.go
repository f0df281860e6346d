package domain

import "fmt"

// Crop anchor positions. The pair (X, Y) picks which part of the source
// survives when a size crops instead of fitting.
const (
	CropLeft   = "left"
	CropCenter = "center"
	CropRight  = "right"
	CropTop    = "top"
	CropBottom = "bottom"
)

// CropPolicy decides how a size reaches its target dimensions: fit inside
// the box preserving aspect ratio (Enabled=false), or fill the box exactly
// and cut away the overflow around the anchor (Enabled=true).
type CropPolicy struct {
	Enabled bool
	X       string // left|center|right, meaningful only when Enabled
	Y       string // top|center|bottom
}

// UnmarshalYAML accepts either a bare bool ("crop: true" centers the cut)
// or a two-element anchor list ("crop: [left, top]").
func (c *CropPolicy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var enabled bool
	if err := unmarshal(&enabled); err == nil {
		*c = CropPolicy{Enabled: enabled, X: CropCenter, Y: CropCenter}
		return nil
	}

	var anchor []string
	if err := unmarshal(&anchor); err != nil {
		return fmt.Errorf("crop must be a bool or a [x, y] anchor pair: %w", err)
	}
	if len(anchor) != 2 {
		return fmt.Errorf("crop anchor must have exactly two elements, got %d", len(anchor))
	}
	switch anchor[0] {
	case CropLeft, CropCenter, CropRight:
	default:
		return fmt.Errorf("invalid horizontal crop anchor %q", anchor[0])
	}
	switch anchor[1] {
	case CropTop, CropCenter, CropBottom:
	default:
		return fmt.Errorf("invalid vertical crop anchor %q", anchor[1])
	}
	*c = CropPolicy{Enabled: true, X: anchor[0], Y: anchor[1]}
	return nil
}

// SizeDefinition is one named entry of the size catalog. A zero width or
// height means that dimension is unconstrained.
type SizeDefinition struct {
	Name   string
	Width  int
	Height int
	Crop   CropPolicy
}
