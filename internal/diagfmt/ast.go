package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"jasm/internal/ast"
)

// ASTNodeOutput is one listing line in the JSON dump of a tree.
type ASTNodeOutput struct {
	Line int      `json:"line"`
	Kind string   `json:"kind"`
	Text string   `json:"text"`
	Node ast.Node `json:"node"`
}

func nodeKind(n ast.Node) string {
	switch n.(type) {
	case *ast.Definition:
		return "definition"
	case *ast.Modifier:
		return "modifier"
	case *ast.Label:
		return "label"
	case *ast.TryCatch:
		return "try"
	case *ast.Alias:
		return "alias"
	case *ast.Signature:
		return "signature"
	case *ast.Throws:
		return "throws"
	case *ast.DefaultValue:
		return "value"
	case *ast.LineNumber:
		return "line"
	case *ast.Comment:
		return "comment"
	case *ast.Expr:
		return "expr"
	case *ast.Instruction:
		return "instruction"
	}
	return "unknown"
}

// BuildASTJSON lists the nodes of root in source order.
func BuildASTJSON(root *ast.Root) []ASTNodeOutput {
	if root == nil {
		return nil
	}
	out := make([]ASTNodeOutput, 0, len(root.Nodes))
	for _, n := range root.Nodes {
		out = append(out, ASTNodeOutput{
			Line: n.Line(),
			Kind: nodeKind(n),
			Text: strings.TrimRight(ast.FormatNode(n), "\n"),
			Node: n,
		})
	}
	return out
}

// FormatASTJSON пишет дерево как JSON массив узлов.
func FormatASTJSON(w io.Writer, root *ast.Root) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildASTJSON(root))
}

// FormatASTPretty печатает дерево обратно в текст листинга с номерами строк.
func FormatASTPretty(w io.Writer, root *ast.Root) error {
	for _, n := range BuildASTJSON(root) {
		if _, err := fmt.Fprintf(w, "%4d | %s\n", n.Line, n.Text); err != nil {
			return err
		}
	}
	return nil
}
