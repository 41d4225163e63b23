package textutil

import "strings"

// fileNameReplacer maps characters that break library file names. Separators
// become dashes so titles like "Graphs: Part 1/2" stay readable.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// Titles come from an LLM; cap them so library paths stay manageable.
const maxFileNameRunes = 120

// SanitizeFileName makes a video title safe to use as a file name. Separator
// characters become dashes, other unsafe characters are dropped, whitespace
// runs collapse to single spaces, and overlong titles are truncated.
func SanitizeFileName(name string) string {
	name = strings.Join(strings.Fields(fileNameReplacer.Replace(name)), " ")
	if runes := []rune(name); len(runes) > maxFileNameRunes {
		name = strings.TrimSpace(string(runes[:maxFileNameRunes]))
	}
	return name
}
