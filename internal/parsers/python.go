package parsers

import (
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// PythonParser extracts class, function, and method declarations from Python
// source. It holds no per-call state and is safe for concurrent use.
type PythonParser struct {
	*treeSitterParser
}

// NewPythonParser creates a new Python parser.
func NewPythonParser() *PythonParser {
	lang := sitter.NewLanguage(python.Language())
	return &PythonParser{
		// The grammar still accepts Python 2 print and exec statements
		treeSitterParser: newTreeSitterParser(lang, "python", "print_statement", "exec_statement"),
	}
}

// Parse parses source and collects every declaration in a single traversal.
// origin labels the source in error messages.
func (p *PythonParser) Parse(source []byte, origin string) (*Declarations, error) {
	tree, err := p.parse(source, origin)
	if err != nil {
		return nil, err
	}
	defer tree.close()

	v := &declarationVisitor{
		source: tree.source,
		frames: []frame{{kind: frameModule, index: -1}},
	}
	v.visit(tree.root())

	return &Declarations{origin: origin, findings: v.findings}, nil
}

type frameKind int

const (
	frameModule frameKind = iota
	frameClass
	frameFunction
)

// frame is one entry of the scope stack. index points at the finding that
// opened the frame (-1 for the module).
type frame struct {
	kind  frameKind
	name  string
	index int
}

// finding is a raw class or function definition seen during traversal.
type finding struct {
	kind        frameKind // frameClass or frameFunction
	name        string
	line        int
	parent      int // index of the enclosing definition, -1 at module scope
	parentKind  frameKind
	insideClass bool // some class frame encloses the definition
	isAsync     bool
	decorators  []string
	bases       []string
	parameters  []string
}

type declarationVisitor struct {
	source   []byte
	frames   []frame
	findings []finding
}

func (v *declarationVisitor) top() frame {
	return v.frames[len(v.frames)-1]
}

func (v *declarationVisitor) insideClass() bool {
	for _, f := range v.frames {
		if f.kind == frameClass {
			return true
		}
	}
	return false
}

// visit walks node in document order. Only class and function bodies push
// frames; compound statements such as if/try/with are transparent.
func (v *declarationVisitor) visit(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Kind() {
	case "decorated_definition":
		v.visitDefinition(node.ChildByFieldName("definition"), v.decorators(node))
		return
	case "class_definition", "function_definition":
		v.visitDefinition(node, []string{})
		return
	}

	for i := uint(0); i < node.NamedChildCount(); i++ {
		v.visit(node.NamedChild(i))
	}
}

func (v *declarationVisitor) visitDefinition(node *sitter.Node, decorators []string) {
	if node == nil {
		return
	}

	parent := v.top()
	f := finding{
		name:        extractNodeText(node.ChildByFieldName("name"), v.source),
		line:        startLine(node),
		parent:      parent.index,
		parentKind:  parent.kind,
		insideClass: v.insideClass(),
		decorators:  decorators,
	}

	switch node.Kind() {
	case "class_definition":
		f.kind = frameClass
		f.bases = v.bases(node.ChildByFieldName("superclasses"))
	case "function_definition":
		f.kind = frameFunction
		f.isAsync = findChildByType(node, "async") != nil
		f.parameters = v.parameters(node.ChildByFieldName("parameters"))
	default:
		// decorated_definition can only wrap classes and functions
		return
	}

	index := len(v.findings)
	v.findings = append(v.findings, f)

	v.frames = append(v.frames, frame{kind: f.kind, name: f.name, index: index})
	v.visit(node.ChildByFieldName("body"))
	v.frames = v.frames[:len(v.frames)-1]
}

// decorators renders every decorator of a decorated_definition. Call
// decorators are rendered by their innermost callee (@g()() renders as "g").
func (v *declarationVisitor) decorators(node *sitter.Node) []string {
	decorators := []string{}
	for _, child := range namedChildren(node) {
		if child.Kind() != "decorator" {
			continue
		}

		var expr *sitter.Node
		if exprs := namedChildren(child); len(exprs) > 0 {
			expr = exprs[0]
		}
		for expr != nil && expr.Kind() == "call" {
			expr = expr.ChildByFieldName("function")
		}
		decorators = append(decorators, v.dottedName(expr))
	}
	return decorators
}

// dottedName renders identifiers and attribute chains as "a.b.c". Any other
// expression falls back to its literal text; nil renders as "".
func (v *declarationVisitor) dottedName(node *sitter.Node) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "identifier":
		return extractNodeText(node, v.source)
	case "attribute":
		object := node.ChildByFieldName("object")
		attr := node.ChildByFieldName("attribute")
		if attr != nil {
			if left := v.dottedName(object); left != "" && isDotted(object) {
				return left + "." + extractNodeText(attr, v.source)
			}
		}
	}
	return strings.TrimSpace(extractNodeText(node, v.source))
}

func isDotted(node *sitter.Node) bool {
	return node != nil && (node.Kind() == "identifier" || node.Kind() == "attribute")
}

// bases renders the positional arguments of a class header verbatim.
// Keyword arguments (metaclass=...) and ** unpacking are not bases.
func (v *declarationVisitor) bases(node *sitter.Node) []string {
	bases := []string{}
	for _, arg := range namedChildren(node) {
		switch arg.Kind() {
		case "keyword_argument", "dictionary_splat":
			continue
		}
		bases = append(bases, extractNodeText(arg, v.source))
	}
	return bases
}

// parameters lists parameter names in declaration order. Variadics keep their
// marker; the bare * and / separators are not parameters.
func (v *declarationVisitor) parameters(node *sitter.Node) []string {
	params := []string{}
	for _, param := range namedChildren(node) {
		switch param.Kind() {
		case "keyword_separator", "positional_separator":
			continue
		case "default_parameter", "typed_default_parameter":
			params = append(params, v.parameterName(param.ChildByFieldName("name")))
		case "typed_parameter":
			var inner *sitter.Node
			if children := namedChildren(param); len(children) > 0 {
				inner = children[0]
			}
			params = append(params, v.parameterName(inner))
		default:
			params = append(params, v.parameterName(param))
		}
	}
	return params
}

func (v *declarationVisitor) parameterName(node *sitter.Node) string {
	if node == nil {
		return ""
	}

	switch node.Kind() {
	case "identifier":
		return extractNodeText(node, v.source)
	case "list_splat_pattern":
		return "*" + v.splatTarget(node, "*")
	case "dictionary_splat_pattern":
		return "**" + v.splatTarget(node, "**")
	}
	return extractNodeText(node, v.source)
}

func (v *declarationVisitor) splatTarget(node *sitter.Node, marker string) string {
	if children := namedChildren(node); len(children) > 0 {
		return extractNodeText(children[0], v.source)
	}
	return strings.TrimSpace(strings.TrimPrefix(extractNodeText(node, v.source), marker))
}
