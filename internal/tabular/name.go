package tabular

import (
	"path/filepath"
	"strings"
)

// DeriveTableName maps a source file name to a table name: the extension is
// stripped, every character outside [A-Za-z0-9] becomes an underscore, and
// the result is lower-cased. "My Report.csv" → "my_report".
func DeriveTableName(fileName string) string {
	base := filepath.Base(fileName)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
