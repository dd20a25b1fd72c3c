package parsers

import (
	"fmt"
	"strings"

	"github.com/mvp-joe/pydecl/internal/extraction"
	sitter "github.com/tree-sitter/go-tree-sitter"
)

// maxNearLength bounds the source excerpt attached to syntax errors.
const maxNearLength = 40

// syntaxTree is a parsed source file. It owns the tree-sitter tree and must be
// closed by the caller.
type syntaxTree struct {
	tree   *sitter.Tree
	source []byte
	origin string
}

func (t *syntaxTree) root() *sitter.Node {
	return t.tree.RootNode()
}

func (t *syntaxTree) close() {
	t.tree.Close()
}

// treeSitterParser provides common tree-sitter parsing functionality.
type treeSitterParser struct {
	language *sitter.Language
	lang     string

	// rejected lists node kinds the grammar accepts but the language no
	// longer does; they are reported like parse errors.
	rejected map[string]bool
}

// newTreeSitterParser creates a new tree-sitter parser for the given language.
func newTreeSitterParser(language *sitter.Language, lang string, rejected ...string) *treeSitterParser {
	p := &treeSitterParser{
		language: language,
		lang:     lang,
		rejected: make(map[string]bool, len(rejected)),
	}
	for _, kind := range rejected {
		p.rejected[kind] = true
	}
	return p
}

// parse builds a concrete syntax tree for source. A tree containing ERROR,
// MISSING or rejected nodes is rejected with a *extraction.SyntaxError; no
// partial tree is ever returned.
func (p *treeSitterParser) parse(source []byte, origin string) (*syntaxTree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(p.language); err != nil {
		return nil, fmt.Errorf("failed to load %s grammar: %w", p.lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, &extraction.SyntaxError{Origin: origin, Line: 1, Column: 1}
	}

	rootNode := tree.RootNode()
	if rootNode.HasError() {
		defer tree.Close()
		return nil, newSyntaxError(firstErrorNode(rootNode), source, origin)
	}
	if node := p.firstRejectedNode(rootNode); node != nil {
		defer tree.Close()
		return nil, newSyntaxError(node, source, origin)
	}

	return &syntaxTree{tree: tree, source: source, origin: origin}, nil
}

// firstErrorNode returns the first ERROR or MISSING node in document order,
// descending only into subtrees that report errors.
func firstErrorNode(node *sitter.Node) *sitter.Node {
	if node == nil {
		return nil
	}
	if node.IsError() || node.IsMissing() {
		return node
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child == nil || !(child.HasError() || child.IsMissing()) {
			continue
		}
		if found := firstErrorNode(child); found != nil {
			return found
		}
	}
	// HasError was set but no explicit error child was found; blame the node itself.
	return node
}

// firstRejectedNode returns the first node in document order whose kind is rejected.
func (p *treeSitterParser) firstRejectedNode(node *sitter.Node) *sitter.Node {
	if len(p.rejected) == 0 || node == nil {
		return nil
	}
	if p.rejected[node.Kind()] {
		return node
	}
	for _, child := range namedChildren(node) {
		if found := p.firstRejectedNode(child); found != nil {
			return found
		}
	}
	return nil
}

func newSyntaxError(node *sitter.Node, source []byte, origin string) *extraction.SyntaxError {
	se := &extraction.SyntaxError{Origin: origin, Line: 1, Column: 1}
	if node == nil {
		return se
	}

	pos := node.StartPosition()
	se.Line = int(pos.Row) + 1
	se.Column = int(pos.Column) + 1

	near := extractNodeText(node, source)
	if node.IsMissing() {
		near = "missing " + node.Kind()
	}
	if i := strings.IndexByte(near, '\n'); i >= 0 {
		near = near[:i]
	}
	if len(near) > maxNearLength {
		near = near[:maxNearLength]
	}
	se.Near = strings.TrimSpace(near)
	return se
}

// extractNodeText extracts the text content of a tree-sitter node.
func extractNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if end > uint(len(source)) || start > end {
		return ""
	}
	return string(source[start:end])
}

// startLine returns the 1-based line on which node begins.
func startLine(node *sitter.Node) int {
	return int(node.StartPosition().Row) + 1
}

// namedChildren returns the named children of node, skipping comments.
func namedChildren(node *sitter.Node) []*sitter.Node {
	if node == nil {
		return nil
	}
	children := make([]*sitter.Node, 0, node.NamedChildCount())
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		children = append(children, child)
	}
	return children
}

// findChildByType finds the first child node with the given type.
func findChildByType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}

	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == nodeType {
			return child
		}
	}
	return nil
}
