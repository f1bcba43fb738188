// File: internal/analysis/tree/parser.go
// Python syntax-tree helpers shared by the four tree-walking scanners.
package tree

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// parsePython parses Python source into a tree-sitter tree. The caller owns
// the returned tree and must Close it. A nil tree with a nil error never
// occurs; parse failures return the error and the file is skipped upstream.
func parsePython(ctx context.Context, parser *sitter.Parser, source []byte) (*sitter.Tree, error) {
	parser.SetLanguage(python.GetLanguage())
	return parser.ParseCtx(ctx, nil, source)
}

// newParser returns a parser configured once per scan; tree-sitter parsers
// are not safe for concurrent use, so each scanner owns its own instance.
func newParser() *sitter.Parser {
	return sitter.NewParser()
}

// walk visits node and its subtree depth-first. The visitor returns false to
// prune descent below the current node.
func walk(node *sitter.Node, visit func(n *sitter.Node) bool) {
	if node == nil || node.IsNull() {
		return
	}
	if !visit(node) {
		return
	}
	cursor := sitter.NewTreeCursor(node)
	defer cursor.Close()
	if ok := cursor.GoToFirstChild(); ok {
		for {
			walk(cursor.CurrentNode(), visit)
			if ok := cursor.GoToNextSibling(); !ok {
				break
			}
		}
	}
}

// lineSpan returns the node's 1-based inclusive line range.
func lineSpan(n *sitter.Node) (int, int) {
	return int(n.StartPoint().Row) + 1, int(n.EndPoint().Row) + 1
}

// unwrapDefinition resolves decorated_definition wrappers to the declaration
// they decorate. Returns the node unchanged for plain declarations.
func unwrapDefinition(n *sitter.Node) *sitter.Node {
	if n.Type() == "decorated_definition" {
		if def := n.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return n
}

// declName returns the text of the declaration's name field, or "".
func declName(n *sitter.Node, source []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(source)
}

// hasDocstring reports whether a block's first statement is a string literal.
// Works for module roots, class bodies, and function bodies alike.
func hasDocstring(body *sitter.Node, source []byte) bool {
	if body == nil {
		return false
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != "expression_statement" {
			return false
		}
		expr := child.NamedChild(0)
		if expr == nil || expr.Type() != "string" {
			return false
		}
		text := strings.Trim(strings.TrimSpace(expr.Content(source)), "\"'")
		return strings.TrimSpace(text) != ""
	}
	return false
}

// fullyTyped reports whether every plain positional parameter carries a type
// annotation and the return type is annotated. Splat parameters and
// separators are ignored, matching how parameter annotations are counted by
// the typing heuristic.
func fullyTyped(fn *sitter.Node) bool {
	if fn.ChildByFieldName("return_type") == nil {
		return false
	}
	params := fn.ChildByFieldName("parameters")
	if params == nil {
		return true
	}
	for i := 0; i < int(params.NamedChildCount()); i++ {
		switch params.NamedChild(i).Type() {
		case "identifier", "default_parameter", "tuple_pattern":
			return false
		}
	}
	return true
}

// hasDecoratorNamed reports whether a decorated_definition wrapper carries a
// decorator whose text mentions one of the given names. The node passed in is
// the wrapper, not the inner declaration; plain declarations (nil wrapper)
// report false.
func hasDecoratorNamed(n *sitter.Node, source []byte, names ...string) bool {
	if n == nil || n.Type() != "decorated_definition" {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "decorator" {
			continue
		}
		text := child.Content(source)
		for _, name := range names {
			if strings.Contains(text, name) {
				return true
			}
		}
	}
	return false
}

// classMethods yields each function defined directly in a class body together
// with its decorated_definition wrapper (nil for undecorated methods).
func classMethods(class *sitter.Node, fn func(method, wrapper *sitter.Node)) {
	body := class.ChildByFieldName("body")
	if body == nil {
		return
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		wrapper := (*sitter.Node)(nil)
		def := child
		if child.Type() == "decorated_definition" {
			wrapper = child
			def = unwrapDefinition(child)
		}
		if def.Type() == "function_definition" {
			fn(def, wrapper)
		}
	}
}

// isDunder reports whether a method name is a magic method (__init__ etc).
func isDunder(name string) bool {
	return strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}

// referencesSelf reports whether any attribute access in the subtree reads or
// writes an attribute of the receiver `self`. This is a structural proxy for
// instance-state usage; indirect access is not recognized.
func referencesSelf(fn *sitter.Node, source []byte) bool {
	found := false
	walk(fn, func(n *sitter.Node) bool {
		if found {
			return false
		}
		if n.Type() == "attribute" {
			obj := n.ChildByFieldName("object")
			if obj != nil && obj.Type() == "identifier" && obj.Content(source) == "self" {
				found = true
				return false
			}
		}
		return true
	})
	return found
}

// walkDecls visits every class and function declaration in the tree,
// anywhere in the nesting, reporting its kind ("class" or "function"), name,
// and 1-based inclusive line span.
func walkDecls(root *sitter.Node, source []byte, fn func(kind, name string, start, end int)) {
	walk(root, func(n *sitter.Node) bool {
		switch n.Type() {
		case "class_definition":
			start, end := lineSpan(n)
			fn("class", declName(n, source), start, end)
		case "function_definition":
			start, end := lineSpan(n)
			fn("function", declName(n, source), start, end)
		}
		return true
	})
}

// countLines counts the lines of a non-empty source blob.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
