package texture

import (
	"fmt"
	"strings"

	"golang.org/x/image/draw"
)

// Filter is the resampling used when a frame does not match the texture size.
// Min applies when shrinking, Mag when enlarging.
type Filter int

const (
	Nearest Filter = iota
	Linear
	CatmullRom
)

func (f Filter) String() string {
	switch f {
	case Nearest:
		return "nearest"
	case Linear:
		return "linear"
	case CatmullRom:
		return "catmullrom"
	default:
		return fmt.Sprintf("Filter(%d)", int(f))
	}
}

func (f Filter) interpolator() draw.Interpolator {
	switch f {
	case Linear:
		return draw.BiLinear
	case CatmullRom:
		return draw.CatmullRom
	default:
		return draw.NearestNeighbor
	}
}

func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "nearest":
		return Nearest, nil
	case "linear", "bilinear":
		return Linear, nil
	case "catmullrom", "cubic":
		return CatmullRom, nil
	}
	return Nearest, fmt.Errorf("unknown texture filter: %s", s)
}
