package lexer

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/mvp-joe/funcscrape/internal/extract"
)

// grammar describes one tree-sitter language: which node kinds define
// functions. The defining node's "name" field, or for C-like declarators the
// innermost identifier, is the function-name token.
type grammar struct {
	name        string
	language    *sitter.Language
	definitions map[string]bool
}

func kinds(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// treeSitterLexer maps file extensions to grammars. JavaScript is parsed
// with the TypeScript grammar and C++ with the C grammar.
type treeSitterLexer struct {
	byExt map[string]*grammar
}

// NewTreeSitterLexer creates a Lexer backed by tree-sitter grammars.
func NewTreeSitterLexer() Lexer {
	cLang := sitter.NewLanguage(c.Language())
	tsLang := sitter.NewLanguage(typescript.LanguageTypescript())
	tsxLang := sitter.NewLanguage(typescript.LanguageTSX())

	cDefs := kinds("function_definition")
	tsDefs := kinds("function_declaration", "generator_function_declaration", "method_definition")

	cGrammar := &grammar{name: "c", language: cLang, definitions: cDefs}
	cppGrammar := &grammar{name: "cpp", language: cLang, definitions: cDefs}
	tsGrammar := &grammar{name: "typescript", language: tsLang, definitions: tsDefs}
	tsxGrammar := &grammar{name: "tsx", language: tsxLang, definitions: tsDefs}
	jsGrammar := &grammar{name: "javascript", language: tsLang, definitions: tsDefs}
	pyGrammar := &grammar{
		name:        "python",
		language:    sitter.NewLanguage(python.Language()),
		definitions: kinds("function_definition"),
	}
	rsGrammar := &grammar{
		name:        "rust",
		language:    sitter.NewLanguage(rust.Language()),
		definitions: kinds("function_item"),
	}
	javaGrammar := &grammar{
		name:        "java",
		language:    sitter.NewLanguage(java.Language()),
		definitions: kinds("method_declaration", "constructor_declaration"),
	}
	phpGrammar := &grammar{
		name:        "php",
		language:    sitter.NewLanguage(php.LanguagePHP()),
		definitions: kinds("function_definition", "method_declaration"),
	}
	rbGrammar := &grammar{
		name:        "ruby",
		language:    sitter.NewLanguage(ruby.Language()),
		definitions: kinds("method", "singleton_method"),
	}

	return &treeSitterLexer{
		byExt: map[string]*grammar{
			".c":    cGrammar,
			".h":    cGrammar,
			".cpp":  cppGrammar,
			".cc":   cppGrammar,
			".hpp":  cppGrammar,
			".ts":   tsGrammar,
			".tsx":  tsxGrammar,
			".js":   jsGrammar,
			".jsx":  jsGrammar,
			".py":   pyGrammar,
			".rs":   rsGrammar,
			".java": javaGrammar,
			".php":  phpGrammar,
			".rb":   rbGrammar,
		},
	}
}

// Resolve picks the grammar by lower-cased extension.
func (l *treeSitterLexer) Resolve(filename string) (Ruleset, error) {
	g, ok := l.byExt[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		return nil, noRuleset(filename)
	}
	return g, nil
}

func (g *grammar) Name() string {
	return g.name
}

// Bind parses the whole file once and records every definition name on the
// row where it appears.
func (g *grammar) Bind(source []byte) (extract.LineTokenizer, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(g.language); err != nil {
		return nil, fmt.Errorf("failed to set %s language: %w", g.name, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse %s source", g.name)
	}
	defer tree.Close()

	rows := make(rowTokens)
	walkTree(tree.RootNode(), func(n *sitter.Node) {
		if !g.definitions[n.Kind()] {
			return
		}
		nameNode := definitionName(n)
		if nameNode == nil {
			return
		}
		row := int(nameNode.StartPosition().Row)
		rows[row] = append(rows[row], extract.Token{
			Kind: extract.KindFunctionName,
			Text: nodeText(nameNode, source),
		})
	})

	return rows, nil
}

// rowTokens holds the function-name tokens of a parsed file by 0-based row.
type rowTokens map[int][]extract.Token

func (r rowTokens) Tokens(index int, line string) []extract.Token {
	return r[index]
}

// definitionName returns the node naming a definition.
func definitionName(n *sitter.Node) *sitter.Node {
	if name := n.ChildByFieldName("name"); name != nil {
		return name
	}
	return declaratorName(n.ChildByFieldName("declarator"))
}

// declaratorName descends C declarators (pointer, function, parenthesized)
// to the identifier they declare.
func declaratorName(n *sitter.Node) *sitter.Node {
	for n != nil {
		switch n.Kind() {
		case "identifier", "field_identifier":
			return n
		}
		next := n.ChildByFieldName("declarator")
		if next == nil {
			for i := uint(0); i < n.ChildCount(); i++ {
				child := n.Child(i)
				if child != nil && child.Kind() == "identifier" {
					return child
				}
			}
			return nil
		}
		n = next
	}
	return nil
}

func walkTree(node *sitter.Node, visit func(*sitter.Node)) {
	if node == nil {
		return
	}
	visit(node)
	for i := uint(0); i < node.ChildCount(); i++ {
		walkTree(node.Child(i), visit)
	}
}

func nodeText(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}
