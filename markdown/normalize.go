package markdown

import "strings"

// Normalize collapses the whitespace artifacts page assembly leaves behind:
// trailing spaces, doubled spaces inside lines and runs of more than one
// blank line. Leading spaces are kept so code block and list indentation
// survives. The function is idempotent.
func Normalize(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		body := strings.TrimLeft(line, " ")
		indent := line[:len(line)-len(body)]
		lines[i] = strings.TrimRight(indent+collapseSpaces(body), " ")
	}
	s = strings.Join(lines, "\n")
	for strings.Contains(s, "\n\n\n") {
		s = strings.ReplaceAll(s, "\n\n\n", "\n\n")
	}
	return s
}

// NormalizePage normalizes a single page's markdown and ends it with exactly
// one trailing newline.
func NormalizePage(s string) string {
	s = strings.Trim(Normalize(s), "\n")
	return s + "\n"
}

func collapseSpaces(s string) string {
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return s
}
