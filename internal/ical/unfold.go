// Package ical reconstructs calendar events from a folded RFC5545-style feed.
package ical

import (
	"strings"
	"unicode/utf8"
)

// foldWidth is the maximum line length in octets before folding.
const foldWidth = 75

// Unfold splits text into logical lines. A physical line starting with a
// space or tab continues the previous logical line with that character
// removed. Empty lines are preserved.
func Unfold(text string) []string {
	var out []string
	for _, line := range splitLines(text) {
		if line == "" {
			out = append(out, line)
			continue
		}
		if line[0] == ' ' || line[0] == '\t' {
			if len(out) > 0 {
				out[len(out)-1] += line[1:]
			} else {
				out = append(out, strings.TrimLeft(line, " \t"))
			}
			continue
		}
		out = append(out, line)
	}
	return out
}

// Fold splits a logical line into physical lines no longer than 75 octets,
// never breaking inside a UTF-8 sequence. Continuation lines start with a
// single space.
func Fold(line string) []string {
	if len(line) <= foldWidth {
		return []string{line}
	}
	var out []string
	for len(line) > foldWidth {
		cut := foldWidth
		for cut > 1 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		if cut == 1 {
			cut = foldWidth
		}
		out = append(out, line[:cut])
		// the leading space counts toward the next line's width
		line = " " + line[cut:]
	}
	return append(out, line)
}

// splitLines splits on \r\n, \n and bare \r. A trailing line break does not
// produce a trailing empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}
