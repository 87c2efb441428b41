package sysmon

import (
	"errors"
	"testing"
)

func TestSample_ReturnsValidRanges(t *testing.T) {
	s := Sample()
	if s.CPUPercent < 0 || s.CPUPercent > 100 {
		t.Errorf("CPUPercent out of range: %f", s.CPUPercent)
	}
	if s.MemPercent < 0 || s.MemPercent > 100 {
		t.Errorf("MemPercent out of range: %f", s.MemPercent)
	}
}

func TestSampler_Sources(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		sampler Sampler
		want    Stats
	}{
		{
			name: "values pass through",
			sampler: Sampler{
				cpuPercent: func() ([]float64, error) { return []float64{42.5}, nil },
				memPercent: func() (float64, error) { return 61.25, nil },
			},
			want: Stats{CPUPercent: 42.5, MemPercent: 61.25},
		},
		{
			name: "failures yield zero",
			sampler: Sampler{
				cpuPercent: func() ([]float64, error) { return nil, errors.New("no /proc") },
				memPercent: func() (float64, error) { return 0, errors.New("no /proc") },
			},
			want: Stats{},
		},
		{
			name: "out of range values are clamped",
			sampler: Sampler{
				cpuPercent: func() ([]float64, error) { return []float64{130}, nil },
				memPercent: func() (float64, error) { return -3, nil },
			},
			want: Stats{CPUPercent: 100},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.sampler.Sample(); got != tt.want {
				t.Errorf("Sample() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStats_String(t *testing.T) {
	t.Parallel()
	if got := (Stats{CPUPercent: 7, MemPercent: 55.55}).String(); got != "cpu   7.0%  mem  55.5%" && got != "cpu   7.0%  mem  55.6%" {
		t.Errorf("String() = %q", got)
	}
}
