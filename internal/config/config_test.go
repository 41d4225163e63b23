package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"storyreel/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "[llm]\napi_key = \"test-key\"\n")

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("resolved = %q, exists = %v", resolved, exists)
	}
	if cfg.Video.Width != 1280 || cfg.Video.Height != 720 || cfg.Video.FPS != 24 {
		t.Fatalf("video defaults = %+v", cfg.Video)
	}
	if cfg.Engine.RingBase != 0.15 || cfg.Engine.RingStep != 0.12 || cfg.Engine.RingCap != 0.35 {
		t.Fatalf("engine defaults = %+v", cfg.Engine)
	}
	if !cfg.Engine.Continuity {
		t.Fatal("continuity should default on")
	}
	if cfg.Queue.PollIntervalSeconds != 5 {
		t.Fatalf("queue defaults = %+v", cfg.Queue)
	}
	if cfg.TTS.Binary != "edge-tts" {
		t.Fatalf("tts defaults = %+v", cfg.TTS)
	}
}

func TestLoadExpandsPaths(t *testing.T) {
	path := writeConfig(t, `
[llm]
api_key = "test-key"

[paths]
staging_dir = "~/storyreel-staging"
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if strings.HasPrefix(cfg.Paths.StagingDir, "~") {
		t.Fatalf("staging dir not expanded: %q", cfg.Paths.StagingDir)
	}
	if !filepath.IsAbs(cfg.Paths.StagingDir) {
		t.Fatalf("staging dir not absolute: %q", cfg.Paths.StagingDir)
	}
	if !filepath.IsAbs(cfg.Queue.DBPath) {
		t.Fatalf("queue db path not absolute: %q", cfg.Queue.DBPath)
	}
}

func TestLoadRequiresLLMKey(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	path := writeConfig(t, "")
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("missing llm.api_key should fail validation")
	}
}

func TestLoadReadsKeyFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "env-key")
	path := writeConfig(t, "")
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.APIKey != "env-key" {
		t.Fatalf("api key = %q", cfg.LLM.APIKey)
	}
}

func TestValidateEngineGeometry(t *testing.T) {
	path := writeConfig(t, `
[llm]
api_key = "test-key"

[engine]
ring_base = 0.4
ring_cap = 0.2
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("ring_cap below ring_base should fail")
	}
}

func TestValidateYouTubePrivacy(t *testing.T) {
	path := writeConfig(t, `
[llm]
api_key = "test-key"

[youtube]
enabled = true
privacy_status = "secret"
`)
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("bogus privacy status should fail")
	}
}

func TestContinuityCanBeDisabled(t *testing.T) {
	path := writeConfig(t, `
[llm]
api_key = "test-key"

[engine]
continuity = false
`)
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Engine.Continuity {
		t.Fatal("explicit continuity = false should stick")
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[llm]") {
		t.Fatal("sample should carry the llm section")
	}
}

func TestEnsureDirectories(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.UploadsDir = filepath.Join(base, "uploads")
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Queue.DBPath = filepath.Join(base, "data", "queue.db")

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StagingDir, cfg.Paths.LogDir, cfg.Paths.UploadsDir, filepath.Join(base, "data")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("directory %q missing (%v)", dir, err)
		}
	}
}
