// 14 Oct 2026

// Package header reads the descriptive part of an old style pdb file,
// the TITLE, COMPND and SOURCE records, and turns it into something
// which can be sent out as json.
//
// Records look like
//   TITLE     CRYSTAL STRUCTURE OF THE KINASE DOMAIN OF HUMAN
//   TITLE    2 PROTEIN X
//   COMPND    MOL_ID: 1;
//   COMPND   2 MOLECULE: PROTEIN KINASE;
// The record name is in columns 1-6, a continuation number in columns
// 8-10 (9-10 for TITLE) and the text starts in column 11. There is no
// grammar beyond that. The compound and source text is a list of
// "field: value;" pairs which may be broken over lines.
package header

import (
	"strconv"
	"strings"
)

const (
	nameEnd = 6  // record name is in the first 6 columns
	contEnd = 10 // continuation field ends at column 10
)

// fixedCont is what the continuation field of a fixed column line must
// hold: nothing on the first line of a record, the line count after.
func fixedCont(count int) string {
	if count == 1 {
		return ""
	}
	return strconv.Itoa(count)
}

// recordText takes one line and the number of times we have seen its
// record type (including this line) and returns the text with the
// record name and continuation number removed.
// We strip by position. A line is laid out in fixed columns only if
// column 7 is blank and columns 8-10 hold exactly the continuation
// number we expect. Then the text starts at column 11. Otherwise (people
// write test data by hand) we drop the record name and, on a
// continuation line, the next word if it is the continuation number.
// We never search the text for the number, since "2" appears in plenty
// of titles.
func recordText(line, ident string, count int) string {
	if len(line) > contEnd && strings.TrimSpace(line[:nameEnd]) == ident &&
		line[nameEnd] == ' ' && strings.TrimSpace(line[nameEnd:contEnd]) == fixedCont(count) {
		return strings.TrimSpace(line[contEnd:])
	}
	rest := strings.TrimSpace(line[len(ident):])
	if count > 1 {
		num := strconv.Itoa(count)
		if rest == num {
			return ""
		}
		if strings.HasPrefix(rest, num+" ") || strings.HasPrefix(rest, num+"\t") {
			rest = strings.TrimSpace(rest[len(num):])
		}
	}
	return rest
}

// Split takes the raw header lines and collects the text for each
// record type. The key is the record name in lower case, so "title",
// "compnd", "source". Text from continuation lines is joined with
// newlines. The case of the text is not touched.
func Split(raw string) map[string]string {
	counts := make(map[string]int)
	bufs := make(map[string]*strings.Builder)
	order := make([]string, 0, 3)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		line = strings.TrimLeft(line, " \t")
		word := line
		if i := strings.IndexAny(line, " \t"); i != -1 {
			word = line[:i]
		}
		ident := strings.ToLower(word)
		counts[ident]++
		sb, ok := bufs[ident]
		if !ok {
			sb = new(strings.Builder)
			bufs[ident] = sb
			order = append(order, ident)
		}
		sb.WriteString(recordText(line, word, counts[ident]))
		sb.WriteByte('\n')
	}

	content := make(map[string]string, len(bufs))
	for _, ident := range order {
		content[ident] = strings.TrimSpace(bufs[ident].String())
	}
	return content
}
