package kernelstub

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// node is a parsed expression.
type node struct {
	kind  nodeKind
	name  string   // symbol name or function head
	value *big.Int // integer value
	args  []*node  // function arguments or list elements
}

type nodeKind int

const (
	nodeInteger nodeKind = iota
	nodeSymbol
	nodeList
	nodeCall
)

type parser struct {
	src []rune
	pos int
}

// parse reads a single expression. A trailing statement terminator is
// reported through the second result.
func parse(input string) (*node, bool, error) {
	p := &parser{src: []rune(input)}

	n, err := p.expr()
	if err != nil {
		return nil, false, err
	}

	p.skipSpace()

	terminated := false
	if p.peek() == ';' {
		terminated = true
		p.pos++
		p.skipSpace()
	}

	if p.pos < len(p.src) {
		return nil, false, p.errorf("unexpected %q", string(p.src[p.pos:]))
	}

	return n, terminated, nil
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("syntax error at %d: %s", p.pos, fmt.Sprintf(format, args...))
}

func (p *parser) peek() rune {
	if p.pos >= len(p.src) {
		return 0
	}

	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(p.src[p.pos]) {
		p.pos++
	}
}

func (p *parser) expr() (*node, error) {
	p.skipSpace()

	switch r := p.peek(); {
	case r == 0:
		return nil, p.errorf("unexpected end of input")
	case r == '{':
		p.pos++

		args, err := p.sequence('}')
		if err != nil {
			return nil, err
		}

		return &node{kind: nodeList, args: args}, nil
	case r == '-' || r == '+' || unicode.IsDigit(r):
		return p.integer()
	case r == '$' || unicode.IsLetter(r):
		return p.symbolOrCall()
	default:
		return nil, p.errorf("unexpected %q", string(r))
	}
}

func (p *parser) integer() (*node, error) {
	start := p.pos

	if r := p.peek(); r == '-' || r == '+' {
		p.pos++
	}

	digits := p.pos
	for p.pos < len(p.src) && unicode.IsDigit(p.src[p.pos]) {
		p.pos++
	}

	if p.pos == digits {
		return nil, p.errorf("expected digits")
	}

	v, ok := new(big.Int).SetString(strings.TrimPrefix(string(p.src[start:p.pos]), "+"), 10)
	if !ok {
		return nil, p.errorf("invalid integer %q", string(p.src[start:p.pos]))
	}

	return &node{kind: nodeInteger, value: v}, nil
}

func (p *parser) symbolOrCall() (*node, error) {
	start := p.pos

	for p.pos < len(p.src) {
		r := p.src[p.pos]
		if r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}

		p.pos++
	}

	name := string(p.src[start:p.pos])

	// Heads may be separated from their brackets by blanks: "Last [x]".
	save := p.pos
	p.skipSpace()

	if p.peek() != '[' {
		p.pos = save

		return &node{kind: nodeSymbol, name: name}, nil
	}

	p.pos++

	args, err := p.sequence(']')
	if err != nil {
		return nil, err
	}

	return &node{kind: nodeCall, name: name, args: args}, nil
}

// sequence reads comma separated expressions up to the closing rune.
func (p *parser) sequence(closing rune) ([]*node, error) {
	var args []*node

	p.skipSpace()

	if p.peek() == closing {
		p.pos++

		return args, nil
	}

	for {
		n, err := p.expr()
		if err != nil {
			return nil, err
		}

		args = append(args, n)

		p.skipSpace()

		switch p.peek() {
		case ',':
			p.pos++
		case closing:
			p.pos++

			return args, nil
		default:
			return nil, p.errorf("expected ',' or %q", string(closing))
		}
	}
}

// String renders the node in input form.
func (n *node) String() string {
	switch n.kind {
	case nodeInteger:
		return n.value.String()
	case nodeSymbol:
		return n.name
	case nodeList:
		return "{" + joinNodes(n.args) + "}"
	default:
		return n.name + "[" + joinNodes(n.args) + "]"
	}
}

func joinNodes(nodes []*node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}

	return strings.Join(parts, ", ")
}
