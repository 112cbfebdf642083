package textutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIntoPages(t *testing.T) {
	t.Run("Empty and blank input yields no pages", func(t *testing.T) {
		assert.Nil(t, SplitIntoPages("", 3))
		assert.Nil(t, SplitIntoPages("   \n\t ", 3))
	})

	t.Run("Default page size groups three sentences", func(t *testing.T) {
		text := "토끼가 살았어요. 거북이를 만났어요! 둘은 경주를 했어요? 토끼가 잠들었어요. 거북이가 이겼어요."
		pages := SplitIntoPages(text, 3)
		assert.Len(t, pages, 2)
		assert.Equal(t, "토끼가 살았어요. 거북이를 만났어요! 둘은 경주를 했어요?", pages[0])
		assert.Equal(t, "토끼가 잠들었어요. 거북이가 이겼어요.", pages[1])
	})

	t.Run("Remainder becomes a shorter final page", func(t *testing.T) {
		pages := SplitIntoPages("하나. 둘. 셋. 넷.", 3)
		assert.Len(t, pages, 2)
		assert.Equal(t, "넷.", pages[1])
	})

	t.Run("Single sentence without trailing whitespace", func(t *testing.T) {
		pages := SplitIntoPages("끝", 3)
		assert.Equal(t, []string{"끝"}, pages)
	})

	t.Run("Concatenation of pages reconstructs the sentence sequence", func(t *testing.T) {
		text := "A. B! C? D. E. F! G."
		for _, k := range []int{1, 2, 3, 4, 7, 10} {
			pages := SplitIntoPages(text, k)
			assert.Equal(t, text, strings.Join(pages, " "), "page size %d", k)
			// Every page except possibly the last holds exactly k sentences.
			for i, page := range pages {
				count := len(SplitIntoPages(page, 1))
				if i < len(pages)-1 {
					assert.Equal(t, k, count, "page %d of size %d run", i, k)
				} else {
					assert.LessOrEqual(t, count, k)
				}
			}
		}
	})

	t.Run("Idempotent on pre-segmented input", func(t *testing.T) {
		text := "가. 나. 다. 라. 마."
		once := SplitIntoPages(text, 2)
		again := SplitIntoPages(strings.Join(once, " "), 2)
		assert.Equal(t, once, again)
	})

	t.Run("Non-positive page size falls back to the default", func(t *testing.T) {
		pages := SplitIntoPages("하나. 둘. 셋. 넷.", 0)
		assert.Len(t, pages, 2)
	})
}
