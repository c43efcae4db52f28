package stemstorage

import (
	"golang.org/x/text/unicode/norm"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SanitizeFilename reduces a client supplied filename to a flat ASCII name
// that cannot escape the directory it is joined onto. The result can be
// empty.
func SanitizeFilename(filename string) string {
	ascii := strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, norm.NFKD.String(filename))

	for _, separator := range []string{"/", "\\"} {
		ascii = strings.ReplaceAll(ascii, separator, " ")
	}

	joined := strings.Join(strings.Fields(ascii), "_")
	return strings.Trim(unsafeFilenameChars.ReplaceAllString(joined, ""), "._")
}

func BaseName(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}
