package deps

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Rendering one 720p segment keeps a full RGBA canvas plus an encoder
// process resident, so each worker is budgeted roughly this much memory.
const perWorkerMemoryBytes = 768 << 20

const maxRenderWorkers = 8

// RenderWorkers returns the size of the animator's render pool. A positive
// configured value wins; zero asks for auto-sizing from CPU count and
// available memory.
func RenderWorkers(configured int) int {
	if configured > 0 {
		return configured
	}

	workers := runtime.NumCPU()
	if counts, err := cpu.Counts(true); err == nil && counts > 0 {
		workers = counts
	}
	if workers > 1 {
		workers--
	}

	if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
		byMemory := int(vm.Available / perWorkerMemoryBytes)
		if byMemory < 1 {
			byMemory = 1
		}
		if byMemory < workers {
			workers = byMemory
		}
	}

	if workers < 1 {
		workers = 1
	}
	if workers > maxRenderWorkers {
		workers = maxRenderWorkers
	}
	return workers
}

// DiskFree reports the free bytes on the filesystem holding path.
func DiskFree(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, err
	}
	return usage.Free, nil
}
