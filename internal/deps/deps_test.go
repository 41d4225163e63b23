package deps

import (
	"testing"

	"storyreel/internal/config"
)

func TestCheckBinariesReportsMissing(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "sh", Description: "always present"},
		{Name: "Bogus", Command: "storyreel-no-such-binary", Description: "never present"},
		{Name: "Unset", Command: ""},
	})
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if !results[0].Available {
		t.Fatalf("sh should resolve: %+v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary should report detail: %+v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("empty command should report unconfigured: %+v", results[2])
	}
}

func TestSystemRequirementsCoverPipelineTools(t *testing.T) {
	cfg := config.Default()
	reqs := SystemRequirements(&cfg)
	names := map[string]bool{}
	for _, req := range reqs {
		names[req.Name] = true
	}
	for _, want := range []string{"FFmpeg", "FFprobe", "TTS"} {
		if !names[want] {
			t.Fatalf("missing requirement %s in %v", want, reqs)
		}
	}
}

func TestRenderWorkersHonorsConfiguredValue(t *testing.T) {
	if got := RenderWorkers(3); got != 3 {
		t.Fatalf("configured workers = %d", got)
	}
}

func TestRenderWorkersAutoSizesWithinBounds(t *testing.T) {
	got := RenderWorkers(0)
	if got < 1 || got > maxRenderWorkers {
		t.Fatalf("auto-sized workers = %d", got)
	}
}

func TestDiskFree(t *testing.T) {
	free, err := DiskFree(t.TempDir())
	if err != nil {
		t.Fatalf("DiskFree: %v", err)
	}
	if free == 0 {
		t.Fatal("free space should be nonzero on a temp dir")
	}
}
