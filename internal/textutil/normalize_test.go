package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSentence(t *testing.T) {
	t.Run("Collapses whitespace and appends terminator", func(t *testing.T) {
		assert.Equal(t, "오늘 강아지랑 놀았다.", NormalizeSentence("오늘  강아지랑\n놀았다"))
	})

	t.Run("Keeps existing terminal punctuation", func(t *testing.T) {
		assert.Equal(t, "정말 재밌었어!", NormalizeSentence("정말 재밌었어!"))
		assert.Equal(t, "그랬을까?", NormalizeSentence("그랬을까?"))
		assert.Equal(t, "끝났다.", NormalizeSentence("끝났다."))
	})

	t.Run("Idempotent for arbitrary input", func(t *testing.T) {
		inputs := []string{"", "  ", "안녕", "안녕.", "여러   칸\t공백", "물음표?", "느낌표! "}
		for _, s := range inputs {
			once := NormalizeSentence(s)
			assert.Equal(t, once, NormalizeSentence(once), "input %q", s)
		}
	})

	t.Run("Blank input stays empty", func(t *testing.T) {
		assert.Equal(t, "", NormalizeSentence("   "))
	})
}

func TestAppendSentence(t *testing.T) {
	t.Run("Forces boundary when draft lacks terminator", func(t *testing.T) {
		assert.Equal(t, "옛날 옛적에. 여우가 살았어요.", AppendSentence("옛날 옛적에", "여우가 살았어요."))
	})

	t.Run("No extra terminator when draft already ends a sentence", func(t *testing.T) {
		assert.Equal(t, "첫 문장. 둘째 문장.", AppendSentence("첫 문장.", "둘째 문장."))
	})

	t.Run("Empty operands pass through", func(t *testing.T) {
		assert.Equal(t, "조각.", AppendSentence("", "조각."))
		assert.Equal(t, "초안.", AppendSentence("초안.", ""))
	})
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "서로-돕기", Slugify("서로 돕기"))
	assert.Equal(t, "용서", Slugify("  용서  "))
	assert.Equal(t, "be-kind-2", Slugify("Be Kind!! 2"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestDecodeBestEffort(t *testing.T) {
	t.Run("UTF-8 passes through", func(t *testing.T) {
		got, err := DecodeBestEffort([]byte("옛날 옛적에"))
		assert.NoError(t, err)
		assert.Equal(t, "옛날 옛적에", got)
	})

	t.Run("EUC-KR is decoded", func(t *testing.T) {
		// "한글" in EUC-KR.
		got, err := DecodeBestEffort([]byte{0xC7, 0xD1, 0xB1, 0xDB})
		assert.NoError(t, err)
		assert.Equal(t, "한글", got)
	})
}
