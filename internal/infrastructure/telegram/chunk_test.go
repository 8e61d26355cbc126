package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitMessageShortText(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"hello"}, SplitMessage("hello", MessageLimit))
	require.Nil(t, SplitMessage("", MessageLimit))
	require.Nil(t, SplitMessage("   \n\n  ", MessageLimit))
}

func TestSplitMessagePrefersParagraphBoundaries(t *testing.T) {
	t.Parallel()

	a := strings.Repeat("a", 30)
	b := strings.Repeat("b", 30)
	c := strings.Repeat("c", 30)
	text := a + "\n\n" + b + "\n\n" + c

	chunks := SplitMessage(text, 70)

	require.Equal(t, []string{a + "\n\n" + b, c}, chunks)
}

func TestSplitMessageHardSplitsOversizedParagraph(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 95)
	chunks := SplitMessage(long, 40)

	require.Len(t, chunks, 3)
	require.Equal(t, strings.Repeat("x", 40), chunks[0])
	require.Equal(t, strings.Repeat("x", 40), chunks[1])
	require.Equal(t, strings.Repeat("x", 15), chunks[2])
}

func TestSplitMessageRuneSafe(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("日", 25)
	chunks := SplitMessage(long, 10)

	require.Len(t, chunks, 3)
	for _, chunk := range chunks {
		require.True(t, len([]rune(chunk)) <= 10)
		require.Equal(t, strings.Repeat("日", len([]rune(chunk))), chunk)
	}
}

func TestSplitMessageEveryChunkWithinLimit(t *testing.T) {
	t.Parallel()

	var parts []string
	for i := 0; i < 40; i++ {
		parts = append(parts, strings.Repeat("p", 200))
	}
	chunks := SplitMessage(strings.Join(parts, "\n\n"), MessageLimit)

	require.NotEmpty(t, chunks)
	for _, chunk := range chunks {
		require.True(t, len([]rune(chunk)) <= MessageLimit)
	}
}
