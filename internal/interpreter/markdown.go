package interpreter

import "strings"

// ExtractCodeBlock strips markdown fencing per spec §4.3: finds the first
// fenced block (with or without a language tag) anywhere in the text,
// including one surrounded by prose before and after, and returns the
// lines between the opening and closing fence. Falls back to the whole
// text when no complete fence pair is present.
func ExtractCodeBlock(text string) string {
	lines := strings.Split(text, "\n")
	openIdx := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			openIdx = i
			break
		}
	}
	if openIdx == -1 {
		return text
	}
	closeIdx := -1
	for i := openIdx + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "```" {
			closeIdx = i
			break
		}
	}
	if closeIdx == -1 {
		return text
	}
	return strings.Join(lines[openIdx+1:closeIdx], "\n")
}
