package youtube

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"storyreel/internal/services"
)

func TestWatchURL(t *testing.T) {
	if got := WatchURL("abc123"); got != "https://www.youtube.com/watch?v=abc123" {
		t.Fatalf("WatchURL = %q", got)
	}
}

func TestLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{"access_token":"at","refresh_token":"rt"}`), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	token, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if token.AccessToken != "at" || token.RefreshToken != "rt" {
		t.Fatalf("token = %+v", token)
	}
}

func TestLoadTokenRejectsEmptyCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	if _, err := loadToken(path); err == nil {
		t.Fatal("empty token should be rejected")
	}
	if _, err := loadToken(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing token file should be rejected")
	}
}

func TestClassifyUploadError(t *testing.T) {
	transient := classifyUploadError(&googleapi.Error{Code: 503})
	if !errors.Is(transient, services.ErrTransient) {
		t.Fatalf("503 should be transient, got %v", transient)
	}
	rateLimited := classifyUploadError(fmt.Errorf("call: %w", &googleapi.Error{Code: 429}))
	if !errors.Is(rateLimited, services.ErrTransient) {
		t.Fatalf("429 should be transient, got %v", rateLimited)
	}
	rejected := classifyUploadError(&googleapi.Error{Code: 403})
	if !errors.Is(rejected, services.ErrExternalTool) || errors.Is(rejected, services.ErrTransient) {
		t.Fatalf("403 should be a tool error, got %v", rejected)
	}
	opaque := classifyUploadError(errors.New("connection reset"))
	if !errors.Is(opaque, services.ErrExternalTool) {
		t.Fatalf("opaque failure should be a tool error, got %v", opaque)
	}
}

func TestSaveTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	original := &oauth2.Token{AccessToken: "at", RefreshToken: "rt"}
	if err := SaveToken(path, original); err != nil {
		t.Fatalf("SaveToken: %v", err)
	}
	reloaded, err := loadToken(path)
	if err != nil {
		t.Fatalf("loadToken: %v", err)
	}
	if reloaded.AccessToken != original.AccessToken || reloaded.RefreshToken != original.RefreshToken {
		t.Fatalf("token = %+v", reloaded)
	}
}
