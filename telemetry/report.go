package telemetry

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
)

// A Report is the human-readable form of a Sample, rounded to three
// decimals. Fields marshal in gyro-first order.
type Report struct {
	Gx float64 `json:"Gx" cbor:"Gx"`
	Gy float64 `json:"Gy" cbor:"Gy"`
	Gz float64 `json:"Gz" cbor:"Gz"`
	Ax float64 `json:"Ax" cbor:"Ax"`
	Ay float64 `json:"Ay" cbor:"Ay"`
	Az float64 `json:"Az" cbor:"Az"`
}

// NewReport rounds s into a Report.
func NewReport(s Sample) Report {
	return Report{
		Gx: round3(s.Gx), Gy: round3(s.Gy), Gz: round3(s.Gz),
		Ax: round3(s.Ax), Ay: round3(s.Ay), Az: round3(s.Az),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// A ReportFormat selects how a Report is marshalled.
type ReportFormat int

const (
	FormatJSON ReportFormat = iota
	FormatCBOR
)

// ParseReportFormat parses "json" or "cbor". The empty string is JSON.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return 0, fmt.Errorf("telemetry: unknown report format %q", s)
}

func (f ReportFormat) String() string {
	if f == FormatCBOR {
		return "cbor"
	}
	return "json"
}

// Marshal encodes r in format f.
func (r Report) Marshal(f ReportFormat) ([]byte, error) {
	if f == FormatCBOR {
		return cbor.Marshal(r)
	}
	return json.Marshal(r)
}

// Text returns s as a UTF-8 payload.
func Text(s string) []byte {
	return []byte(s)
}
