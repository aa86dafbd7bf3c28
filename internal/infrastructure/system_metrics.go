package infrastructure

import (
	"runtime"
	"time"
)

// RuntimeStats is a snapshot of process health reported by the health
// endpoint.
type RuntimeStats struct {
	Uptime        string `json:"uptime"`
	Goroutines    int    `json:"goroutines"`
	HeapAllocMB   uint64 `json:"heap_alloc_mb"`
	SysMB         uint64 `json:"sys_mb"`
	NumGC         uint32 `json:"num_gc"`
	GoVersion     string `json:"go_version"`
	LastGCPauseNS uint64 `json:"last_gc_pause_ns"`
}

// CollectRuntimeStats reads the Go runtime counters.
func CollectRuntimeStats(startTime time.Time) RuntimeStats {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats := RuntimeStats{
		Uptime:      time.Since(startTime).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
		HeapAllocMB: ms.HeapAlloc / 1024 / 1024,
		SysMB:       ms.Sys / 1024 / 1024,
		NumGC:       ms.NumGC,
		GoVersion:   runtime.Version(),
	}
	if ms.NumGC > 0 {
		stats.LastGCPauseNS = ms.PauseNs[(ms.NumGC+255)%256]
	}
	return stats
}
