// Package music selects the background track mixed under the narration. A
// configured track wins; otherwise the library directory is scanned, first
// for a mood match, then alphabetically. No track means no music bed.
package music

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".aac":  true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".flac": true,
}

// Service picks background tracks from the music library.
type Service struct {
	dir   string
	track string
}

// NewService creates a selector over the given library directory. track, when
// set, pins the selection.
func NewService(dir, track string) *Service {
	return &Service{dir: strings.TrimSpace(dir), track: strings.TrimSpace(track)}
}

// Pick returns the track path for the given mood, or "" when the library has
// nothing to offer. A pinned track that does not exist is an error rather
// than silent silence.
func (s *Service) Pick(mood string) (string, error) {
	if s.track != "" {
		path := s.track
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("music track %s: %w", path, err)
		}
		return path, nil
	}
	if s.dir == "" {
		return "", nil
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("music dir %s: %w", s.dir, err)
	}

	tracks := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			tracks = append(tracks, entry.Name())
		}
	}
	if len(tracks) == 0 {
		return "", nil
	}
	sort.Strings(tracks)

	mood = strings.ToLower(strings.TrimSpace(mood))
	if mood != "" {
		for _, name := range tracks {
			if strings.Contains(strings.ToLower(name), mood) {
				return filepath.Join(s.dir, name), nil
			}
		}
	}
	return filepath.Join(s.dir, tracks[0]), nil
}
