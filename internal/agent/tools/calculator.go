package tools

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// CalculatorSpec evaluates a restricted arithmetic grammar: numbers, + - * /,
// ^ for exponentiation, parentheses, and a whitelisted set of functions and
// constants. The input is parsed by a small recursive-descent parser, never
// handed to any evaluator, so an unknown identifier is an error string and
// nothing more.
func CalculatorSpec() Spec {
	return Spec{
		Name: "calculator",
		Description: "Useful for performing mathematical calculations. " +
			"Input should be a mathematical expression like '2+2' or 'sqrt(16)' or '10*5/2'",
		Run: runCalculator,
	}
}

func runCalculator(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return "Error in calculation: empty expression. Please provide a mathematical expression."
	}

	p := &exprParser{input: []rune(query)}
	result, err := p.parse()
	if err != nil {
		return fmt.Sprintf("Error in calculation: %v. Please check your mathematical expression.", err)
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return "Error in calculation: result is not a finite number. Please check your mathematical expression."
	}
	return fmt.Sprintf("The result of %s is: %s", query, strconv.FormatFloat(result, 'g', -1, 64))
}

var calcConstants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var calcUnaryFuncs = map[string]func(float64) float64{
	"sqrt":  math.Sqrt,
	"sin":   math.Sin,
	"cos":   math.Cos,
	"tan":   math.Tan,
	"log":   math.Log,
	"abs":   math.Abs,
	"round": math.Round,
}

type exprParser struct {
	input []rune
	pos   int
}

func (p *exprParser) parse() (float64, error) {
	v, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected character %q at position %d", p.input[p.pos], p.pos)
	}
	return v, nil
}

// expr := term (('+'|'-') term)*
func (p *exprParser) parseExpr() (float64, error) {
	v, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '+':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v += rhs
		case '-':
			p.pos++
			rhs, err := p.parseTerm()
			if err != nil {
				return 0, err
			}
			v -= rhs
		default:
			return v, nil
		}
	}
}

// term := unary (('*'|'/') unary)*
func (p *exprParser) parseTerm() (float64, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peek() {
		case '*':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= rhs
		case '/':
			p.pos++
			rhs, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if rhs == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			v /= rhs
		default:
			return v, nil
		}
	}
}

// unary := '-' unary | power
func (p *exprParser) parseUnary() (float64, error) {
	if p.peek() == '-' {
		p.pos++
		v, err := p.parseUnary()
		return -v, err
	}
	return p.parsePower()
}

// power := primary ('^' unary)?   right-associative
func (p *exprParser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if p.peek() == '^' {
		p.pos++
		exp, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

// primary := NUMBER | IDENT '(' expr (',' expr)* ')' | CONST | '(' expr ')'
func (p *exprParser) parsePrimary() (float64, error) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, fmt.Errorf("unexpected end of expression")
	}

	c := p.input[p.pos]
	switch {
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(')'); err != nil {
			return 0, err
		}
		return v, nil

	case unicode.IsDigit(c) || c == '.':
		return p.parseNumber()

	case unicode.IsLetter(c) || c == '_':
		return p.parseIdent()

	default:
		return 0, fmt.Errorf("unexpected character %q at position %d", c, p.pos)
	}
}

func (p *exprParser) parseNumber() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (unicode.IsDigit(p.input[p.pos]) || p.input[p.pos] == '.') {
		p.pos++
	}
	v, err := strconv.ParseFloat(string(p.input[start:p.pos]), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", string(p.input[start:p.pos]))
	}
	return v, nil
}

func (p *exprParser) parseIdent() (float64, error) {
	start := p.pos
	for p.pos < len(p.input) && (unicode.IsLetter(p.input[p.pos]) || unicode.IsDigit(p.input[p.pos]) || p.input[p.pos] == '_') {
		p.pos++
	}
	name := strings.ToLower(string(p.input[start:p.pos]))

	if v, ok := calcConstants[name]; ok {
		return v, nil
	}

	p.skipSpaces()
	if p.peek() != '(' {
		return 0, fmt.Errorf("unknown identifier %q", name)
	}
	p.pos++

	args, err := p.parseArgs()
	if err != nil {
		return 0, err
	}

	if fn, ok := calcUnaryFuncs[name]; ok {
		if len(args) != 1 {
			return 0, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		return fn(args[0]), nil
	}

	switch name {
	case "min", "max":
		if len(args) < 2 {
			return 0, fmt.Errorf("%s expects at least 2 arguments", name)
		}
		v := args[0]
		for _, a := range args[1:] {
			if (name == "min") == (a < v) {
				v = a
			}
		}
		return v, nil
	}
	return 0, fmt.Errorf("unknown function %q", name)
}

func (p *exprParser) parseArgs() ([]float64, error) {
	var args []float64
	for {
		v, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, v)

		p.skipSpaces()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return args, nil
		default:
			return nil, fmt.Errorf("expected ',' or ')' in argument list")
		}
	}
}

// peek skips spaces and returns the next rune without consuming it.
func (p *exprParser) peek() rune {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *exprParser) expect(want rune) error {
	p.skipSpaces()
	if p.pos >= len(p.input) || p.input[p.pos] != want {
		return fmt.Errorf("expected %q", want)
	}
	p.pos++
	return nil
}

func (p *exprParser) skipSpaces() {
	for p.pos < len(p.input) && unicode.IsSpace(p.input[p.pos]) {
		p.pos++
	}
}
