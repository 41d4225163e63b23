// Package youtube uploads finished videos over the YouTube Data API. OAuth
// credentials come from a client-secrets file plus a cached user token; the
// daemon never runs an interactive flow, so a missing or expired token is a
// configuration error surfaced to the operator.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"storyreel/internal/services"
)

const (
	defaultCategoryID = "22" // People & Blogs
	defaultPrivacy    = "private"
)

// Config captures the upload settings.
type Config struct {
	ClientSecretsPath string
	TokenPath         string
	Privacy           string
	CategoryID        string
	Tags              []string
}

// Client uploads videos for one authenticated channel.
type Client struct {
	cfg     Config
	service *youtubeapi.Service
}

// NewClient loads the OAuth credentials and builds the API service.
func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	cfg.Privacy = strings.TrimSpace(strings.ToLower(cfg.Privacy))
	if cfg.Privacy == "" {
		cfg.Privacy = defaultPrivacy
	}
	if strings.TrimSpace(cfg.CategoryID) == "" {
		cfg.CategoryID = defaultCategoryID
	}

	secrets, err := os.ReadFile(cfg.ClientSecretsPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "load credentials", cfg.ClientSecretsPath, err)
	}
	oauthCfg, err := google.ConfigFromJSON(secrets, youtubeapi.YoutubeUploadScope)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "parse credentials", cfg.ClientSecretsPath, err)
	}

	token, err := loadToken(cfg.TokenPath)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "upload", "load token",
			"missing or unreadable OAuth token; authorize the channel and place the token file at "+cfg.TokenPath, err)
	}

	service, err := youtubeapi.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, token)))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "upload", "build service", "youtube api", err)
	}
	return &Client{cfg: cfg, service: service}, nil
}

// Upload pushes the video and returns its watch URL.
func (c *Client) Upload(ctx context.Context, videoPath, title, description string) (string, error) {
	file, err := os.Open(videoPath)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "upload", "open video", videoPath, err)
	}
	defer file.Close()

	video := &youtubeapi.Video{
		Snippet: &youtubeapi.VideoSnippet{
			Title:       title,
			Description: description,
			Tags:        c.cfg.Tags,
			CategoryId:  c.cfg.CategoryID,
		},
		Status: &youtubeapi.VideoStatus{
			PrivacyStatus:           c.cfg.Privacy,
			SelfDeclaredMadeForKids: false,
		},
	}

	call := c.service.Videos.Insert([]string{"snippet", "status"}, video)
	inserted, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		return "", classifyUploadError(err)
	}
	return WatchURL(inserted.Id), nil
}

// WatchURL builds the public watch URL for a video ID.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func classifyUploadError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code >= 500 || apiErr.Code == 429 {
			return services.Wrap(services.ErrTransient, "upload", "insert video", fmt.Sprintf("http %d", apiErr.Code), err)
		}
		return services.Wrap(services.ErrExternalTool, "upload", "insert video", fmt.Sprintf("http %d", apiErr.Code), err)
	}
	return services.Wrap(services.ErrExternalTool, "upload", "insert video", "request failed", err)
}

func loadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}
	if token.AccessToken == "" && token.RefreshToken == "" {
		return nil, fmt.Errorf("token file %s carries no credentials", path)
	}
	return &token, nil
}

// SaveToken persists a refreshed token back to disk.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
