// Package sysmon samples system-wide CPU and memory usage for the dashboard's
// status line.
package sysmon

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Stats holds a single snapshot of system-wide resource usage.
type Stats struct {
	CPUPercent float64 // 0.0 .. 100.0
	MemPercent float64 // 0.0 .. 100.0
}

// String renders the snapshot for a status line.
func (s Stats) String() string {
	return fmt.Sprintf("cpu %5.1f%%  mem %5.1f%%", s.CPUPercent, s.MemPercent)
}

// Sampler reads CPU and memory usage. The zero value uses gopsutil.
type Sampler struct {
	cpuPercent func() ([]float64, error)
	memPercent func() (float64, error)
}

// Sample collects one snapshot. CPU usage is the delta since the previous
// call. Fields whose source fails are left at zero.
func (s Sampler) Sample() Stats {
	cpuFn, memFn := s.cpuPercent, s.memPercent
	if cpuFn == nil {
		cpuFn = func() ([]float64, error) { return cpu.Percent(0, false) }
	}
	if memFn == nil {
		memFn = func() (float64, error) {
			vmem, err := mem.VirtualMemory()
			if err != nil || vmem == nil {
				return 0, err
			}
			return vmem.UsedPercent, nil
		}
	}

	var st Stats
	if pcts, err := cpuFn(); err == nil && len(pcts) > 0 {
		st.CPUPercent = clamp(pcts[0])
	}
	if p, err := memFn(); err == nil {
		st.MemPercent = clamp(p)
	}
	return st
}

// Sample collects a snapshot with the default sampler.
func Sample() Stats { return Sampler{}.Sample() }

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
