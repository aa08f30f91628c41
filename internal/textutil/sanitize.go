package textutil

import (
	"path"
	"strings"
	"unicode"
)

// unsafeReplacer maps characters that break shell-free argv or filesystem use.
var unsafeReplacer = strings.NewReplacer(
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

// SanitizeFileName reduces name to a single safe path element. Directory parts
// are discarded, unsafe characters are replaced and control characters dropped.
// A leading dash is removed so the name can never be read as an ffmpeg option.
// The result is empty when nothing usable remains.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, "\\", "/"))
	if name == "" {
		return ""
	}
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, unsafeReplacer.Replace(name))
	name = strings.TrimLeft(strings.TrimSpace(name), "-.")
	return name
}

// WithExtension returns name with ext appended unless it already carries an
// extension.
func WithExtension(name, ext string) string {
	if name == "" || path.Ext(name) != "" {
		return name
	}
	return name + ext
}
