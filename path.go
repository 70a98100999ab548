package mpform

import "strings"

// renderPath joins a key path using bracket notation: the first segment is
// written as-is and each following segment is wrapped in brackets, so
// ["a", "b", "c"] renders as "a[b][c]".
func renderPath(path []string) string {
	var b strings.Builder
	b.WriteString(path[0])
	for _, p := range path[1:] {
		b.WriteByte('[')
		b.WriteString(p)
		b.WriteByte(']')
	}
	return b.String()
}

// appendPath returns path extended by key without sharing the backing array
// of path, so sibling keys never overwrite each other.
func appendPath(path []string, key string) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	return append(out, key)
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
