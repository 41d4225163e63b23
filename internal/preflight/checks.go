package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"storyreel/internal/config"
	"storyreel/internal/deps"
	"storyreel/internal/services/llm"
)

// A render run needs room for stills, segments, and the assembled video.
const minStagingFreeBytes = 2 << 30

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLM) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeLLMError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckDirectoryAccess verifies that the directory exists and is
// readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckStagingDiskSpace verifies the staging filesystem has room for render
// artifacts.
func CheckStagingDiskSpace(path string) Result {
	const name = "Staging disk space"
	if path == "" {
		return Result{Name: name, Detail: "staging directory not configured"}
	}
	free, err := deps.DiskFree(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if free < minStagingFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%.1f GiB free, need at least %.1f GiB", gib(free), gib(minStagingFreeBytes))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%.1f GiB free", gib(free))}
}

// CheckYouTubeCredentials verifies the OAuth credential files exist. Token
// validity is only known at upload time; this catches the common case of an
// enabled uploader with no credentials on disk.
func CheckYouTubeCredentials(cfg config.YouTube) Result {
	const name = "YouTube credentials"
	if _, err := os.Stat(cfg.ClientSecretsFile); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("client secrets missing at %s", cfg.ClientSecretsFile)}
	}
	if _, err := os.Stat(cfg.TokenFile); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("oauth token missing at %s; authorize the channel first", cfg.TokenFile)}
	}
	return Result{Name: name, Passed: true, Detail: "credential files present"}
}

func gib(bytes uint64) float64 {
	return float64(bytes) / (1 << 30)
}

func summarizeLLMError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (LLM API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (LLM API unreachable)"
	}
	return err.Error()
}
