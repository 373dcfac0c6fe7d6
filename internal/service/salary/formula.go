package salary

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/hrmstack/payroll-engine-go/internal/domain/salary"
)

// Formula expressions support the four arithmetic operators, parentheses,
// numeric literals and bare component-name references, e.g.
// "basic * 0.5 + (hra / 2)". Each structure's formulas are parsed once
// into an AST and cached on the resolution plan.

type exprKind int

const (
	exprLiteral exprKind = iota
	exprComponentRef
	exprBinaryOp
)

type expr struct {
	kind    exprKind
	literal decimal.Decimal
	ref     string
	op      byte // '+', '-', '*', '/'
	left    *expr
	right   *expr
}

// refs appends every component name the expression mentions.
func (e *expr) refs(out []string) []string {
	switch e.kind {
	case exprComponentRef:
		return append(out, e.ref)
	case exprBinaryOp:
		out = e.left.refs(out)
		return e.right.refs(out)
	}
	return out
}

// eval computes the expression against already-resolved component values.
// The resolver guarantees every referenced name is present; division by
// zero is the only runtime failure.
func (e *expr) eval(resolved map[string]decimal.Decimal) (decimal.Decimal, error) {
	switch e.kind {
	case exprLiteral:
		return e.literal, nil
	case exprComponentRef:
		v, ok := resolved[e.ref]
		if !ok {
			return decimal.Zero, fmt.Errorf("unresolved reference %q", e.ref)
		}
		return v, nil
	default:
		l, err := e.left.eval(resolved)
		if err != nil {
			return decimal.Zero, err
		}
		r, err := e.right.eval(resolved)
		if err != nil {
			return decimal.Zero, err
		}
		switch e.op {
		case '+':
			return l.Add(r), nil
		case '-':
			return l.Sub(r), nil
		case '*':
			return l.Mul(r), nil
		default:
			if r.IsZero() {
				return decimal.Zero, fmt.Errorf("division by zero")
			}
			return l.Div(r), nil
		}
	}
}

// ========== LEXER ==========

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
	tokenEOF
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func lexFormula(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		c := input[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(':
			tokens = append(tokens, token{tokenLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokenRParen, ")", i})
			i++
		case c == '+' || c == '-' || c == '*' || c == '/':
			tokens = append(tokens, token{tokenOp, string(c), i})
			i++
		case c >= '0' && c <= '9' || c == '.':
			start := i
			dots := 0
			for i < len(input) && (input[i] >= '0' && input[i] <= '9' || input[i] == '.') {
				if input[i] == '.' {
					dots++
				}
				i++
			}
			if dots > 1 {
				return nil, fmt.Errorf("malformed number %q at position %d", input[start:i], start)
			}
			tokens = append(tokens, token{tokenNumber, input[start:i], start})
		case isIdentStart(rune(c)):
			start := i
			for i < len(input) && isIdentPart(rune(input[i])) {
				i++
			}
			tokens = append(tokens, token{tokenIdent, input[start:i], start})
		default:
			return nil, fmt.Errorf("unexpected character %q at position %d", c, i)
		}
	}
	tokens = append(tokens, token{tokenEOF, "", len(input)})
	return tokens, nil
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

// ========== PARSER ==========

// parseFormula builds an AST with conventional precedence: '*' and '/'
// bind tighter than '+' and '-', unary minus binds tightest.
func parseFormula(component, input string) (*expr, error) {
	if strings.TrimSpace(input) == "" {
		return nil, invalidFormula(component, "formula is empty")
	}
	tokens, err := lexFormula(input)
	if err != nil {
		return nil, invalidFormula(component, err.Error())
	}
	p := &formulaParser{tokens: tokens}
	root, err := p.parseExpr()
	if err != nil {
		return nil, invalidFormula(component, err.Error())
	}
	if p.peek().kind != tokenEOF {
		return nil, invalidFormula(component, fmt.Sprintf("unexpected %q at position %d", p.peek().text, p.peek().pos))
	}
	return root, nil
}

func invalidFormula(component, reason string) error {
	return &salary.ResolutionError{
		Kind:      salary.ResolutionInvalidFormula,
		Component: component,
		Reason:    reason,
	}
}

type formulaParser struct {
	tokens []token
	pos    int
}

func (p *formulaParser) peek() token {
	return p.tokens[p.pos]
}

func (p *formulaParser) next() token {
	t := p.tokens[p.pos]
	if t.kind != tokenEOF {
		p.pos++
	}
	return t
}

func (p *formulaParser) parseExpr() (*expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenOp && (p.peek().text == "+" || p.peek().text == "-") {
		op := p.next().text[0]
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &expr{kind: exprBinaryOp, op: op, left: left, right: right}
	}
	return left, nil
}

func (p *formulaParser) parseTerm() (*expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokenOp && (p.peek().text == "*" || p.peek().text == "/") {
		op := p.next().text[0]
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &expr{kind: exprBinaryOp, op: op, left: left, right: right}
	}
	return left, nil
}

func (p *formulaParser) parseFactor() (*expr, error) {
	t := p.next()
	switch t.kind {
	case tokenNumber:
		d, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, fmt.Errorf("malformed number %q at position %d", t.text, t.pos)
		}
		return &expr{kind: exprLiteral, literal: d}, nil
	case tokenIdent:
		return &expr{kind: exprComponentRef, ref: t.text}, nil
	case tokenLParen:
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.kind != tokenRParen {
			return nil, fmt.Errorf("missing closing parenthesis at position %d", closing.pos)
		}
		return inner, nil
	case tokenOp:
		// Unary minus only.
		if t.text == "-" {
			operand, err := p.parseFactor()
			if err != nil {
				return nil, err
			}
			return &expr{
				kind:  exprBinaryOp,
				op:    '-',
				left:  &expr{kind: exprLiteral, literal: decimal.Zero},
				right: operand,
			}, nil
		}
		return nil, fmt.Errorf("unexpected operator %q at position %d", t.text, t.pos)
	case tokenEOF:
		return nil, fmt.Errorf("unexpected end of formula")
	default:
		return nil, fmt.Errorf("unexpected %q at position %d", t.text, t.pos)
	}
}
