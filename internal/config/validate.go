package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateYouTube(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/storyreel/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set OPENROUTER_API_KEY env var or edit %s (create with 'storyreel config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.MusicVolume > 1 {
		return errors.New("video.music_volume must be between 0 and 1")
	}
	if c.Video.StepSeconds > 60 {
		return errors.New("video.step_seconds is implausibly large (max 60)")
	}
	return nil
}

func (c *Config) validateEngine() error {
	if c.Engine.RingBase >= 0.5 {
		return errors.New("engine.ring_base must leave room inside the unit square (max 0.5)")
	}
	if c.Engine.RingCap < c.Engine.RingBase {
		return errors.New("engine.ring_cap must be at least engine.ring_base")
	}
	if c.Engine.RingCap >= 0.5 {
		return errors.New("engine.ring_cap must leave room inside the unit square (max 0.5)")
	}
	return nil
}

func (c *Config) validateYouTube() error {
	if !c.YouTube.Enabled {
		return nil
	}
	if strings.TrimSpace(c.YouTube.ClientSecretsFile) == "" {
		return errors.New("youtube.client_secrets_file must be set when youtube.enabled is true")
	}
	if strings.TrimSpace(c.YouTube.TokenFile) == "" {
		return errors.New("youtube.token_file must be set when youtube.enabled is true")
	}
	switch c.YouTube.PrivacyStatus {
	case "public", "private", "unlisted":
	default:
		return fmt.Errorf("youtube.privacy_status %q must be public, private, or unlisted", c.YouTube.PrivacyStatus)
	}
	return nil
}
