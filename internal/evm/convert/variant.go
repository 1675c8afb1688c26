package convert

import (
	"fmt"
	"strings"
)

// Variant identifies the wire-format family a Converter produces. The set is closed and chosen
// when the Converter is constructed.
type Variant uint8

const (
	// Standard is the Ethereum L1 wire family.
	Standard Variant = iota + 1
	// Optimism is the L2 settlement family: the standard shapes plus deposit and L1 fee fields.
	// Its transaction shape has no blob fields.
	Optimism
)

// Variants lists every supported variant.
func Variants() []Variant {
	return []Variant{Standard, Optimism}
}

// ParseVariant resolves a configured variant name.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "standard", "ethereum", "l1":
		return Standard, nil
	case "optimism", "op", "op-stack":
		return Optimism, nil
	default:
		return 0, fmt.Errorf("unknown variant %q", name)
	}
}

func (v Variant) String() string {
	switch v {
	case Standard:
		return "standard"
	case Optimism:
		return "optimism"
	default:
		return fmt.Sprintf("variant(%d)", uint8(v))
	}
}

// Valid reports whether v is one of the supported variants.
func (v Variant) Valid() bool {
	return v == Standard || v == Optimism
}

// BlobFields reports whether the variant's transaction shape carries blob fields.
func (v Variant) BlobFields() bool {
	return v == Standard
}

// Extended reports whether the variant adds the settlement-layer superset of fields.
func (v Variant) Extended() bool {
	return v == Optimism
}

func (v Variant) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("unsupported variant %d", uint8(v))
	}
	return []byte(v.String()), nil
}

func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}
