package scripts

import (
	"errors"
	"fmt"

	"github.com/DarkerMinecraft/Gravix/engineapi"
)

// ErrSampleFailure is returned by Sample.Fail.
var ErrSampleFailure = errors.New("sample: requested failure")

// Sample is a minimal managed type used to exercise every result kind.
type Sample struct {
	svc      engineapi.Services
	label    string
	value    int32
	disposed bool
}

func NewSample(svc engineapi.Services) *Sample {
	return &Sample{svc: svc}
}

func (s *Sample) SetValue(v int32) { s.value = v }

func (s *Sample) GetValue() int32 { return s.value }

// Add adds delta and returns the new value.
func (s *Sample) Add(delta int32) int32 {
	s.value += delta
	return s.value
}

func (s *Sample) SetLabel(label string) { s.label = label }

func (s *Sample) Label() string { return s.label }

func (s *Sample) IsPositive() bool { return s.value > 0 }

func (s *Sample) Half() float32 { return float32(s.value) / 2 }

func (s *Sample) Ratio(den float64) float64 {
	if den == 0 {
		return 0
	}
	return float64(s.value) / den
}

func (s *Sample) Describe() string {
	if s.label == "" {
		return fmt.Sprintf("Sample(%d)", s.value)
	}
	return fmt.Sprintf("Sample(%s=%d)", s.label, s.value)
}

// Clone returns a copy that is registered under a new handle.
func (s *Sample) Clone() *Sample {
	return &Sample{svc: s.svc, label: s.label, value: s.value}
}

// Self returns the receiver, which keeps its existing handle.
func (s *Sample) Self() *Sample { return s }

// Scale takes a slice, which cannot cross the boundary.
func (s *Sample) Scale(v []float32) {
	for _, f := range v {
		s.value = int32(float32(s.value) * f)
	}
}

func (s *Sample) Fail() error { return ErrSampleFailure }

func (s *Sample) Panic() { panic("sample: requested panic") }

func (s *Sample) Dispose() error {
	if s.disposed {
		return errors.New("sample: disposed twice")
	}
	s.disposed = true
	if s.svc != nil {
		s.svc.Log("Sample disposed: " + s.Describe())
	}
	return nil
}

func (s *Sample) Disposed() bool { return s.disposed }
