package ai

import (
	"context"
	"strings"
	"testing"

	"github.com/CRaLFa/nikkei-bot/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	entry := types.Entry{
		Time:        "2024/01/15 09:00",
		StockCode:   "7203",
		CompanyName: "トヨタ自動車",
		Title:       "業務提携に関するお知らせ",
	}

	prompt := buildPrompt(entry, "本文")

	assert.Contains(t, prompt, "会社: トヨタ自動車 (7203)")
	assert.Contains(t, prompt, "表題: 業務提携に関するお知らせ")
	assert.True(t, strings.HasSuffix(prompt, "本文"))
}

func TestBuildPrompt_TruncatesLongDocuments(t *testing.T) {
	prompt := buildPrompt(types.Entry{}, strings.Repeat("あ", maxDocumentRunes+100))
	assert.Equal(t, maxDocumentRunes, strings.Count(prompt, "あ"))
}

func TestParseAnalysis(t *testing.T) {
	a, err := parseAnalysis(`{"summary": ["A社と提携", "  ", "2024年4月開始"]}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"A社と提携", "2024年4月開始"}, a.Summary)

	_, err = parseAnalysis("not json")
	assert.Error(t, err)
}

func TestNewSummarizer_RequiresKey(t *testing.T) {
	_, err := NewSummarizer(context.Background(), "", "")
	assert.Error(t, err)
}
