// Package sensor reads a six-axis motion sensor.
package sensor

import (
	"math"

	"github.com/XC-/bluezgatt/telemetry"
)

// Sensitivity at the default full-scale ranges (±2 g, ±250 °/s).
const (
	AccelLSBPerG   = 16384.0
	GyroLSBPerDegS = 131.0
)

// Raw is one reading in sensor counts.
type Raw struct {
	Ax, Ay, Az int16
	Gx, Gy, Gz int16
}

// Sample scales r into physical units.
func (r Raw) Sample() telemetry.Sample {
	return telemetry.Sample{
		Ax: float64(r.Ax) / AccelLSBPerG,
		Ay: float64(r.Ay) / AccelLSBPerG,
		Az: float64(r.Az) / AccelLSBPerG,
		Gx: float64(r.Gx) / GyroLSBPerDegS,
		Gy: float64(r.Gy) / GyroLSBPerDegS,
		Gz: float64(r.Gz) / GyroLSBPerDegS,
	}
}

// A Reader returns the sensor's current raw reading.
type Reader interface {
	ReadRaw() (Raw, error)
}

// ReaderFunc is an adapter to allow the use of ordinary functions as Readers.
type ReaderFunc func() (Raw, error)

// ReadRaw returns f().
func (f ReaderFunc) ReadRaw() (Raw, error) { return f() }

// Read returns r's current reading in physical units.
func Read(r Reader) (telemetry.Sample, error) {
	raw, err := r.ReadRaw()
	if err != nil {
		return telemetry.Sample{}, err
	}
	return raw.Sample(), nil
}

// A Simulator produces a deterministic reading for hosts without the
// sensor: the device lies flat and rocks slowly about its x axis.
// Each ReadRaw advances one step.
type Simulator struct {
	step int
}

func (s *Simulator) ReadRaw() (Raw, error) {
	phase := 2 * math.Pi * float64(s.step%64) / 64
	s.step++
	tilt := math.Sin(phase) * 0.1
	return Raw{
		Ay: int16(math.Round(AccelLSBPerG * math.Sin(tilt))),
		Az: int16(math.Round(AccelLSBPerG * math.Cos(tilt))),
		Gx: int16(math.Round(GyroLSBPerDegS * 10 * math.Cos(phase))),
	}, nil
}
