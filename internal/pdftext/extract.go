// Package pdftext recovers readable text from PDF bytes without a PDF object parser.
//
// The lexer only looks at literal strings inside BT/ET text objects. It does not
// check which operator consumes a string, so any parenthesised literal inside a
// text block is returned, including ones a viewer would never show.
package pdftext

import (
	"bytes"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxChars bounds every string returned by this package.
const MaxChars = 20000

var (
	beginText = []byte("BT")
	endText   = []byte("ET")

	horizontalSpace = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	spaceAroundEOL  = regexp.MustCompile(` ?\n ?`)
	blankLines      = regexp.MustCompile(`\n{4,}`)
)

var escapes = map[byte]rune{
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'b':  '\b',
	'f':  '\f',
	'\\': '\\',
	'(':  '(',
	')':  ')',
}

// Extract returns the normalised text of every BT/ET block in data, one line
// per block. It returns "" when nothing is recoverable.
func Extract(data []byte) string {
	blocks := Blocks(data)
	lines := make([]string, 0, len(blocks))
	for _, strs := range blocks {
		if len(strs) == 0 {
			continue
		}
		lines = append(lines, strings.Join(strs, " "))
	}
	return Normalize(strings.Join(lines, "\n"))
}

// Blocks returns the literal strings captured from each text block, in order.
func Blocks(data []byte) [][]string {
	var blocks [][]string
	rest := data
	for {
		start := bytes.Index(rest, beginText)
		if start < 0 {
			break
		}
		rest = rest[start+len(beginText):]

		end := bytes.Index(rest, endText)
		if end < 0 {
			break
		}
		blocks = append(blocks, lexBlock(rest[:end]))
		rest = rest[end+len(endText):]
	}
	return blocks
}

// lexBlock is a three-state machine: outside a string, inside one, or just
// after a backslash. Bytes map one-to-one onto Latin-1 runes.
func lexBlock(block []byte) []string {
	var (
		out    []string
		buf    []rune
		depth  int
		escape bool
	)
	for _, c := range block {
		if depth == 0 {
			if c == '(' {
				depth = 1
				buf = buf[:0]
			}
			continue
		}

		if escape {
			escape = false
			if r, ok := escapes[c]; ok {
				buf = append(buf, r)
			} else {
				buf = append(buf, rune(c))
			}
			continue
		}

		switch c {
		case '\\':
			escape = true
		case '(':
			depth++
			buf = append(buf, '(')
		case ')':
			depth--
			if depth == 0 {
				if len(buf) > 0 {
					out = append(out, string(buf))
				}
				continue
			}
			buf = append(buf, ')')
		default:
			buf = append(buf, rune(c))
		}
	}
	return out
}

// Normalize unifies line endings, drops NUL bytes and collapses horizontal
// whitespace. Three or more consecutive blank lines become one; shorter runs
// are kept. The result is trimmed and truncated to MaxChars.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	text = horizontalSpace.ReplaceAllString(text, " ")
	text = spaceAroundEOL.ReplaceAllString(text, "\n")
	text = blankLines.ReplaceAllString(text, "\n\n")
	return Truncate(strings.TrimSpace(text), MaxChars)
}

// Truncate cuts s to at most limit runes.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
