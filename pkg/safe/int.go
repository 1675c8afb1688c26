// Package safe provides overflow-checked integer conversions.
package safe

import (
	"fmt"
	"math"
)

type (
	signed interface {
		~int | ~int8 | ~int16 | ~int32 | ~int64
	}
	unsigned interface {
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
	}
	integer interface {
		signed | unsigned
	}
)

// Uint64 converts a signed value such as a slice position to uint64, rejecting negatives.
func Uint64[T signed](v T) (uint64, error) {
	if v < 0 {
		return 0, fmt.Errorf("value %d out of uint64 range", v)
	}
	return uint64(v), nil
}

// Int64 converts an unsigned value such as a block height to int64.
func Int64[T unsigned](v T) (int64, error) {
	if uint64(v) > math.MaxInt64 {
		return 0, fmt.Errorf("value %d out of int64 range", v)
	}
	return int64(v), nil
}

// Int converts an unsigned value such as a wire index to int.
func Int[T unsigned](v T) (int, error) {
	if uint64(v) > math.MaxInt {
		return 0, fmt.Errorf("value %d out of int range", v)
	}
	return int(v), nil
}

// Uint32 converts a count or index to uint32.
func Uint32[T integer](v T) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of uint32 range", v)
	}
	return uint32(v), nil
}

// Uint8 converts a small code such as a transaction type or receipt status to uint8.
func Uint8[T integer](v T) (uint8, error) {
	if v < 0 || uint64(v) > math.MaxUint8 {
		return 0, fmt.Errorf("value %d out of uint8 range", v)
	}
	return uint8(v), nil
}
