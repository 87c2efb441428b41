package metrics

import "runtime"

// RuntimeSnapshot holds a point-in-time reading of the Go runtime.
type RuntimeSnapshot struct {
	HeapAlloc  uint64 // bytes in use by application
	Sys        uint64 // total bytes obtained from OS
	NumGC      uint32
	Goroutines int
}

// ReadRuntime reads current runtime statistics.
func ReadRuntime() RuntimeSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return RuntimeSnapshot{
		HeapAlloc:  m.HeapAlloc,
		Sys:        m.Sys,
		NumGC:      m.NumGC,
		Goroutines: runtime.NumGoroutine(),
	}
}

// HeapMiB returns HeapAlloc in mebibytes.
func (s RuntimeSnapshot) HeapMiB() float64 {
	return float64(s.HeapAlloc) / (1 << 20)
}
