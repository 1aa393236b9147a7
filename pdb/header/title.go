package header

import (
	"strings"
)

// Title joins the lines of a TITLE block. Lines are joined with a
// space, unless a line ends with a hyphen. Then we assume a word was
// broken over the line and join without a space.
func Title(block string) string {
	var sb strings.Builder
	for _, line := range strings.Split(block, "\n") {
		sb.WriteString(line)
		if !strings.HasSuffix(line, "-") {
			sb.WriteByte(' ')
		}
	}
	return strings.TrimSpace(sb.String())
}
