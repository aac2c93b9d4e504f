package review

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// languageFromFilename extracts a language hint, e.g. "clip.ko.srt" -> "ko".
func languageFromFilename(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	ext := filepath.Ext(base)
	if ext == "" {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// resolveLanguage normalises a language hint and returns its English name.
// Unrecognised hints yield empty strings.
func resolveLanguage(hint string) (tag, label string) {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return "", ""
	}
	t, err := language.Parse(hint)
	if err != nil {
		return "", ""
	}
	return t.String(), display.English.Tags().Name(t)
}
