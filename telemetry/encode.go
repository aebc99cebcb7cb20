// Package telemetry encodes motion sensor samples for GATT payloads.
//
// The binary form packs each of the six channels Ax, Ay, Az, Gx, Gy, Gz
// as a pair of little-endian int32: the integer part floor(v) followed by
// the fractional part in millionths. The fractional part is never
// negative, so -1.5 encodes as (-2, 500000).
package telemetry

import (
	"encoding/binary"
	"fmt"
	"math"
)

// SampleSize is the length of an encoded Sample.
const SampleSize = 48

const (
	scale = 1000000 // microunits per unit
	snap  = 1e-6    // in microunits
)

// A Sample is one reading in physical units: acceleration in g,
// angular rate in degrees per second.
type Sample struct {
	Ax, Ay, Az float64
	Gx, Gy, Gz float64
}

func (s *Sample) channels() [6]*float64 {
	return [6]*float64{&s.Ax, &s.Ay, &s.Az, &s.Gx, &s.Gy, &s.Gz}
}

// Encode returns the 48-byte fixed-point encoding of s.
func Encode(s Sample) []byte {
	b := make([]byte, SampleSize)
	for i, v := range s.channels() {
		n, f := split(*v)
		binary.LittleEndian.PutUint32(b[i*8:], uint32(n))
		binary.LittleEndian.PutUint32(b[i*8+4:], uint32(f))
	}
	return b
}

// Decode is the inverse of Encode.
func Decode(b []byte) (Sample, error) {
	var s Sample
	if len(b) != SampleSize {
		return s, fmt.Errorf("telemetry: payload is %d bytes, want %d", len(b), SampleSize)
	}
	for i, v := range s.channels() {
		n := int32(binary.LittleEndian.Uint32(b[i*8:]))
		f := int32(binary.LittleEndian.Uint32(b[i*8+4:]))
		*v = float64(n) + float64(f)/scale
	}
	return s, nil
}

// split returns the integer part floor(v) and the fractional part
// of v in millionths, truncated. Integer parts beyond int32 saturate;
// NaN encodes as zero.
func split(v float64) (int32, int32) {
	switch {
	case math.IsNaN(v):
		return 0, 0
	case v >= math.MaxInt32+1:
		return math.MaxInt32, scale - 1
	case v < math.MinInt32:
		return math.MinInt32, 0
	}
	n := math.Floor(v)
	x := (v - n) * scale
	f := math.Floor(x)
	// v - n is inexact; a value a hair below a microunit boundary is on it.
	if r := math.Ceil(x); r-x < snap {
		f = r
	}
	if f >= scale {
		n++
		f -= scale
	}
	if n > math.MaxInt32 {
		return math.MaxInt32, scale - 1
	}
	return int32(n), int32(f)
}
