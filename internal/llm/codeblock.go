package llm

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractCode pulls executable code out of a model reply.
//
// Code models are asked for a complete script, but replies routinely wrap
// the script in a fenced code block and surround it with prose. The reply
// is parsed as Markdown and the first fenced code block is returned; a
// reply with no fence at all is treated as raw code.
func ExtractCode(reply string) string {
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return ""
	}

	source := []byte(reply)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var code string
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || code != "" {
			return ast.WalkContinue, nil
		}
		fenced, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var sb strings.Builder
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			sb.Write(line.Value(source))
		}
		code = sb.String()
		return ast.WalkStop, nil
	})

	if code != "" {
		return strings.TrimSpace(code)
	}
	return reply
}
