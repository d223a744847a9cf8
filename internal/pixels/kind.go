package pixels

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedKind is returned for a Kind outside the supported set.
var ErrUnsupportedKind = errors.New("unsupported pixel kind")

// Kind selects the per-channel storage of a decoded frame.
type Kind int

const (
	Uint8   Kind = iota // 8 bits per channel, *image.RGBA
	Uint16              // 16 bits per channel, *image.RGBA64
	Float32             // 32-bit float per channel, *RGBA32F
)

func (k Kind) Valid() bool {
	return k >= Uint8 && k <= Float32
}

func (k Kind) String() string {
	switch k {
	case Uint8:
		return "uint8"
	case Uint16:
		return "uint16"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// BytesPerPixel returns the storage size of one RGBA pixel.
func (k Kind) BytesPerPixel() int {
	switch k {
	case Uint16:
		return 8
	case Float32:
		return 16
	default:
		return 4
	}
}

// ParseKind accepts the names used in config files and on the command line.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "8", "uint8", "rgba":
		return Uint8, nil
	case "16", "uint16", "short", "rgba64":
		return Uint16, nil
	case "float", "float32", "f32":
		return Float32, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

// MarshalText lets Kind round-trip through yaml.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedKind, int(k))
	}
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	v, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
