package bot

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxMessageLength is the Telegram limit on message text, in characters.
const MaxMessageLength = 4096

// splitMessage cuts text into chunks of at most limit runes. Cuts happen
// at line breaks; a single line longer than limit is cut mid-line at a
// point outside HTML tags and entities. Chunks holding only whitespace are
// not emitted.
func splitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		chunks  []string
		cur     strings.Builder
		curLen  int
		started bool
	)
	flush := func() {
		if started && strings.TrimSpace(cur.String()) != "" {
			chunks = append(chunks, cur.String())
		}
		cur.Reset()
		curLen = 0
		started = false
	}

	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			r := []rune(line)
			n := cutPoint(r, limit)
			chunks = append(chunks, string(r[:n]))
			line = string(r[n:])
		}

		n := utf8.RuneCountInString(line)
		if started && curLen+1+n > limit {
			flush()
		}
		if started {
			cur.WriteByte('\n')
			curLen++
		}
		cur.WriteString(line)
		curLen += n
		started = true
	}
	flush()
	return chunks
}

// cutPoint returns how many runes of r go into the next chunk, at most
// limit. A point between two elements wins over one inside an element's
// text; either must sit outside a tag and an entity. With no such point
// the cut falls at limit.
func cutPoint(r []rune, limit int) int {
	var (
		inTag, inEntity, closing bool
		depth, flat, outside     int
	)
	for i := 0; i < len(r) && i < limit; i++ {
		c := r[i]
		switch {
		case inTag:
			if c == '/' && r[i-1] == '<' {
				closing = true
			}
			if c == '>' {
				inTag = false
				switch {
				case closing:
					if depth > 0 {
						depth--
					}
				case r[i-1] != '/':
					depth++
				}
			}
		case inEntity:
			if c == ';' || unicode.IsSpace(c) {
				inEntity = false
			}
		case c == '<':
			inTag, closing = true, false
		case c == '&':
			inEntity = true
		}

		if inTag || inEntity {
			continue
		}
		flat = i + 1
		if depth == 0 {
			outside = i + 1
		}
	}

	switch {
	case outside > 0:
		return outside
	case flat > 0:
		return flat
	default:
		return limit
	}
}
