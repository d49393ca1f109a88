// Package helpers provides small string utilities shared by the WAF builder.
package helpers

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// reservedFilenameChars cannot appear in a file name on at least one of the
// filesystems a WAF is commonly served from.
const reservedFilenameChars = `<>:"/\|?*`

// SafeFilename turns a record title into a file name stem. The title is
// NFC-normalised, reserved and control characters become underscores, and
// surrounding spaces and trailing dots are dropped. Nothing else is changed;
// in particular the result is never truncated.
func SafeFilename(title string) string {
	title = norm.NFC.String(title)

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		switch {
		case r < 0x20, r == 0x7f:
			b.WriteRune('_')
		case strings.ContainsRune(reservedFilenameChars, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(b.String()), "."))
}

// ClientDirName derives the output directory name for a client: lower case
// with spaces replaced by underscores, then made filesystem safe.
func ClientDirName(client string) string {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(client)), " ", "_")
	return SafeFilename(name)
}
