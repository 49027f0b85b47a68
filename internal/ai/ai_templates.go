package ai

import (
	"fmt"
	"strings"

	"github.com/CRaLFa/nikkei-bot/internal/types"
)

const systemInstruction = `
あなたは日本株の適時開示を読むアナリストです。

与えられた開示資料の本文を読み、投資家にとって重要な事実だけを1〜3個の箇条書きで要約してください。

- 提携先、契約金額、開始時期、業績への影響など、具体的な数字や固有名詞を優先する
- 推測や投資判断は書かない
- 各項目は60文字以内
`

func buildPrompt(entry types.Entry, text string) string {
	if r := []rune(text); len(r) > maxDocumentRunes {
		text = string(r[:maxDocumentRunes])
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("会社: %s (%s)\n", entry.CompanyName, entry.StockCode))
	sb.WriteString(fmt.Sprintf("表題: %s\n", entry.Title))
	sb.WriteString(fmt.Sprintf("開示日時: %s\n", entry.Time))
	sb.WriteString("\n---\n")
	sb.WriteString(text)
	return sb.String()
}
