package tools

import (
	"context"
	"fmt"
	"go/scanner"
	"go/token"
	"math"
	"strconv"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

const (
	maxExpressionLen   = 1024
	maxExpressionDepth = 64
)

func calculatorTool() mcptypes.Tool {
	return mcptypes.NewTool("calculator",
		mcptypes.WithDescription("perform mathematical operation"),
		mcptypes.WithString("expression",
			mcptypes.Required(),
			mcptypes.Description("the mathematical expression"),
		),
	)
}

func handleCalculator(ctx context.Context, request mcptypes.CallToolRequest) (*mcptypes.CallToolResult, error) {
	expression, err := request.RequireString("expression")
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}

	value, err := Evaluate(expression)
	if err != nil {
		return mcptypes.NewToolResultError(err.Error()), nil
	}

	return mcptypes.NewToolResultText(fmt.Sprintf(`{"result": %s}`, formatNumber(value))), nil
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

var calcConstants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

type calcFunc struct {
	arity int // -1 for one or more
	fn    func(args []float64) float64
}

var calcFuncs = map[string]calcFunc{
	"sqrt":  {1, func(a []float64) float64 { return math.Sqrt(a[0]) }},
	"abs":   {1, func(a []float64) float64 { return math.Abs(a[0]) }},
	"floor": {1, func(a []float64) float64 { return math.Floor(a[0]) }},
	"ceil":  {1, func(a []float64) float64 { return math.Ceil(a[0]) }},
	"round": {1, func(a []float64) float64 { return math.Round(a[0]) }},
	"log":   {1, func(a []float64) float64 { return math.Log(a[0]) }},
	"exp":   {1, func(a []float64) float64 { return math.Exp(a[0]) }},
	"sin":   {1, func(a []float64) float64 { return math.Sin(a[0]) }},
	"cos":   {1, func(a []float64) float64 { return math.Cos(a[0]) }},
	"tan":   {1, func(a []float64) float64 { return math.Tan(a[0]) }},
	"pow":   {2, func(a []float64) float64 { return math.Pow(a[0], a[1]) }},
	"min": {-1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Min(m, v)
		}
		return m
	}},
	"max": {-1, func(a []float64) float64 {
		m := a[0]
		for _, v := range a[1:] {
			m = math.Max(m, v)
		}
		return m
	}},
}

// Evaluate computes an arithmetic expression. The grammar is numbers, the
// constants pi and e, the functions in calcFuncs, parentheses, unary + and -,
// binary + - * / % and right-associative ** (^ is accepted as an alias).
// Nothing else is accepted; there are no variables or assignments.
func Evaluate(expression string) (float64, error) {
	if strings.TrimSpace(expression) == "" {
		return 0, fmt.Errorf("empty expression")
	}
	if len(expression) > maxExpressionLen {
		return 0, fmt.Errorf("expression longer than %d characters", maxExpressionLen)
	}

	tokens, err := tokenize(expression)
	if err != nil {
		return 0, err
	}

	p := &calcParser{tokens: tokens}
	value, err := p.expr(0)
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.kind != token.EOF {
		return 0, fmt.Errorf("unexpected %q at offset %d", tok.text, tok.offset)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return value, nil
}

type calcToken struct {
	kind   token.Token
	text   string
	offset int
}

// tokenPow is not a Go operator; "**" is folded from two adjacent MUL tokens.
const tokenPow = token.Token(-1)

func tokenize(expression string) ([]calcToken, error) {
	fset := token.NewFileSet()
	file := fset.AddFile("expression", fset.Base(), len(expression))

	var scanErr error
	var s scanner.Scanner
	s.Init(file, []byte(expression), func(pos token.Position, msg string) {
		if scanErr == nil {
			scanErr = fmt.Errorf("invalid expression at offset %d: %s", pos.Offset, msg)
		}
	}, scanner.ScanComments)

	var tokens []calcToken
	for {
		pos, tok, lit := s.Scan()
		if scanErr != nil {
			return nil, scanErr
		}
		offset := file.Offset(pos)

		switch tok {
		case token.EOF:
			return append(tokens, calcToken{kind: token.EOF, text: "end of expression", offset: offset}), nil
		case token.SEMICOLON:
			if lit == "\n" {
				continue // inserted by the scanner at end of input
			}
			return nil, fmt.Errorf("unexpected %q at offset %d", ";", offset)
		case token.INT, token.FLOAT, token.IDENT:
			tokens = append(tokens, calcToken{kind: tok, text: lit, offset: offset})
		case token.ADD, token.SUB, token.QUO, token.REM, token.LPAREN, token.RPAREN, token.COMMA:
			tokens = append(tokens, calcToken{kind: tok, text: tok.String(), offset: offset})
		case token.XOR:
			tokens = append(tokens, calcToken{kind: tokenPow, text: "^", offset: offset})
		case token.MUL:
			if n := len(tokens); n > 0 && tokens[n-1].kind == token.MUL && tokens[n-1].offset == offset-1 {
				tokens[n-1] = calcToken{kind: tokenPow, text: "**", offset: offset - 1}
				continue
			}
			tokens = append(tokens, calcToken{kind: tok, text: "*", offset: offset})
		default:
			text := lit
			if text == "" {
				text = tok.String()
			}
			return nil, fmt.Errorf("unsupported token %q at offset %d", text, offset)
		}
	}
}

type calcParser struct {
	tokens []calcToken
	pos    int
}

func (p *calcParser) peek() calcToken {
	return p.tokens[p.pos]
}

func (p *calcParser) next() calcToken {
	tok := p.tokens[p.pos]
	if tok.kind != token.EOF {
		p.pos++
	}
	return tok
}

func (p *calcParser) expect(kind token.Token) error {
	if tok := p.next(); tok.kind != kind {
		return fmt.Errorf("expected %q, found %q at offset %d", kind.String(), tok.text, tok.offset)
	}
	return nil
}

// expr := term (("+" | "-") term)*
func (p *calcParser) expr(depth int) (float64, error) {
	if depth > maxExpressionDepth {
		return 0, fmt.Errorf("expression nested too deeply")
	}
	left, err := p.term(depth)
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek().kind {
		case token.ADD:
			p.next()
			right, err := p.term(depth)
			if err != nil {
				return 0, err
			}
			left += right
		case token.SUB:
			p.next()
			right, err := p.term(depth)
			if err != nil {
				return 0, err
			}
			left -= right
		default:
			return left, nil
		}
	}
}

// term := unary (("*" | "/" | "%") unary)*
func (p *calcParser) term(depth int) (float64, error) {
	left, err := p.unary(depth)
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op.kind != token.MUL && op.kind != token.QUO && op.kind != token.REM {
			return left, nil
		}
		p.next()
		right, err := p.unary(depth)
		if err != nil {
			return 0, err
		}
		switch op.kind {
		case token.MUL:
			left *= right
		case token.QUO:
			if right == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			left /= right
		case token.REM:
			if right == 0 {
				return 0, fmt.Errorf("modulo by zero")
			}
			left = math.Mod(left, right)
		}
	}
}

// unary := ("+" | "-") unary | power
func (p *calcParser) unary(depth int) (float64, error) {
	if depth > maxExpressionDepth {
		return 0, fmt.Errorf("expression nested too deeply")
	}
	switch p.peek().kind {
	case token.ADD:
		p.next()
		return p.unary(depth + 1)
	case token.SUB:
		p.next()
		v, err := p.unary(depth + 1)
		return -v, err
	}
	return p.power(depth)
}

// power := primary ["**" unary]
func (p *calcParser) power(depth int) (float64, error) {
	base, err := p.primary(depth)
	if err != nil {
		return 0, err
	}
	if p.peek().kind != tokenPow {
		return base, nil
	}
	p.next()
	exponent, err := p.unary(depth + 1)
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exponent), nil
}

// primary := number | constant | name "(" expr ("," expr)* ")" | "(" expr ")"
func (p *calcParser) primary(depth int) (float64, error) {
	tok := p.next()
	switch tok.kind {
	case token.INT, token.FLOAT:
		return parseNumber(tok)
	case token.LPAREN:
		v, err := p.expr(depth + 1)
		if err != nil {
			return 0, err
		}
		return v, p.expect(token.RPAREN)
	case token.IDENT:
		name := strings.ToLower(tok.text)
		if p.peek().kind == token.LPAREN {
			return p.call(name, tok, depth)
		}
		if v, ok := calcConstants[name]; ok {
			return v, nil
		}
		return 0, fmt.Errorf("unknown name %q", tok.text)
	default:
		return 0, fmt.Errorf("unexpected %q at offset %d", tok.text, tok.offset)
	}
}

func (p *calcParser) call(name string, tok calcToken, depth int) (float64, error) {
	f, ok := calcFuncs[name]
	if !ok {
		return 0, fmt.Errorf("unknown function %q", tok.text)
	}
	p.next() // (

	var args []float64
	for {
		v, err := p.expr(depth + 1)
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		if p.peek().kind != token.COMMA {
			break
		}
		p.next()
	}
	if err := p.expect(token.RPAREN); err != nil {
		return 0, err
	}

	if f.arity >= 0 && len(args) != f.arity {
		return 0, fmt.Errorf("%s takes %d argument(s), got %d", name, f.arity, len(args))
	}
	return f.fn(args), nil
}

// parseNumber accepts decimal, 0x, 0o and 0b literals. A bare leading zero
// would read as octal, so "010" is rejected rather than evaluated to 8.
func parseNumber(tok calcToken) (float64, error) {
	if tok.kind == token.INT {
		if len(tok.text) > 1 && tok.text[0] == '0' && (isDigit(tok.text[1]) || tok.text[1] == '_') {
			return 0, fmt.Errorf("invalid number %q: leading zeros are not allowed", tok.text)
		}
		if n, err := strconv.ParseInt(tok.text, 0, 64); err == nil {
			return float64(n), nil
		}
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(tok.text, "_", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", tok.text)
	}
	return v, nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
