package telegram

import "strings"

// MessageLimit is the Telegram per-message character ceiling.
const MessageLimit = 4096

// SplitMessage cuts text into chunks of at most limit characters,
// preferring paragraph boundaries. A paragraph longer than the limit is
// hard-split.
func SplitMessage(text string, limit int) []string {
	if limit <= 0 {
		limit = MessageLimit
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var (
		chunks  []string
		current strings.Builder
	)

	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
	}

	for _, paragraph := range strings.Split(text, "\n\n") {
		if paragraph == "" {
			continue
		}

		if len([]rune(paragraph)) > limit {
			flush()
			chunks = append(chunks, hardSplit(paragraph, limit)...)
			continue
		}

		candidate := len([]rune(current.String())) + len([]rune(paragraph))
		if current.Len() > 0 {
			candidate += 2
		}
		if candidate > limit {
			flush()
		}

		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}

	flush()
	return chunks
}

func hardSplit(paragraph string, limit int) []string {
	runes := []rune(paragraph)
	var pieces []string
	for len(runes) > 0 {
		n := limit
		if n > len(runes) {
			n = len(runes)
		}
		pieces = append(pieces, string(runes[:n]))
		runes = runes[n:]
	}
	return pieces
}
