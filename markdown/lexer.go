package markdown

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// 行首词法：分类器只关心一行开头的几个记号（井号、缩进、短横线、强调标记、反引号、引用符），
// 其余内容统一归为 Text。规则按顺序匹配，先命中者优先。
var (
	prefixLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Hashes", Pattern: `#+`},
		{Name: "Indent", Pattern: `[ \t\r\f\v]+`},
		{Name: "Dash", Pattern: `-`},
		{Name: "Strong", Pattern: `\*\*|__`},
		{Name: "Emphasis", Pattern: `[*_]`},
		{Name: "Backtick", Pattern: "`"},
		{Name: "Quote", Pattern: `>`},
		{Name: "Newline", Pattern: `\n`},
		{Name: "Text", Pattern: `[^\n]+`},
	})

	hashesTokenType   = mustTokenType("Hashes")
	indentTokenType   = mustTokenType("Indent")
	dashTokenType     = mustTokenType("Dash")
	strongTokenType   = mustTokenType("Strong")
	emphasisTokenType = mustTokenType("Emphasis")
	backtickTokenType = mustTokenType("Backtick")
	quoteTokenType    = mustTokenType("Quote")
)

// token 是行首记号的精简表示。
type token struct {
	Type  lexer.TokenType
	Value string
}

// scanPrefix 将一行切分为记号序列（不含 EOF）。
func scanPrefix(line string) ([]token, error) {
	lex, err := prefixLexer.LexString("", line)
	if err != nil {
		return nil, fmt.Errorf("行首词法初始化失败: %w", err)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("行首词法分析失败: %w", err)
	}
	out := make([]token, 0, len(raw))
	for _, tok := range raw {
		if tok.EOF() {
			break
		}
		out = append(out, token{Type: tok.Type, Value: tok.Value})
	}
	return out, nil
}

func mustTokenType(name string) lexer.TokenType {
	symbols := prefixLexer.Symbols()
	tt, ok := symbols[name]
	if !ok {
		panic(fmt.Sprintf("token %s not defined", name))
	}
	return tt
}
