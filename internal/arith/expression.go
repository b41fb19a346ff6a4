// Package arith parses, evaluates and generates the two-operand questions used by the quiz.
package arith

import (
	"fmt"
	"strconv"
	"strings"

	"mathquiz/internal/domain"
)

// Op is one of the four supported operators.
type Op byte

const (
	OpAdd Op = '+'
	OpSub Op = '-'
	OpDiv Op = '/'
	OpMul Op = '*'
)

// Ops lists the operators in the order the generator draws from.
var Ops = []Op{OpAdd, OpSub, OpDiv, OpMul}

func (o Op) valid() bool {
	switch o {
	case OpAdd, OpSub, OpDiv, OpMul:
		return true
	}
	return false
}

// Expression is "A op B" with non-negative integer operands.
type Expression struct {
	A  int
	Op Op
	B  int
}

func (e Expression) String() string {
	return fmt.Sprintf("%d %c %d", e.A, e.Op, e.B)
}

// Evaluate computes the exact result. Division is not truncated.
func (e Expression) Evaluate() (float64, error) {
	a, b := float64(e.A), float64(e.B)
	switch e.Op {
	case OpAdd:
		return a + b, nil
	case OpSub:
		return a - b, nil
	case OpMul:
		return a * b, nil
	case OpDiv:
		if e.B == 0 {
			return 0, domain.ErrDivisionByZero
		}
		return a / b, nil
	}
	return 0, fmt.Errorf("%w: operator %q", domain.ErrInvalidExpression, e.Op)
}

// Parse reads "A op B". Spaces around the operator are optional; nothing else is accepted.
func Parse(text string) (Expression, error) {
	s := strings.TrimSpace(text)
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	if i == 0 {
		return Expression{}, fmt.Errorf("%w: %q", domain.ErrInvalidExpression, text)
	}
	left := s[:i]
	rest := strings.TrimLeft(s[i:], " ")
	if rest == "" || !Op(rest[0]).valid() {
		return Expression{}, fmt.Errorf("%w: %q", domain.ErrInvalidExpression, text)
	}
	op := Op(rest[0])
	right := strings.TrimLeft(rest[1:], " ")
	if right == "" {
		return Expression{}, fmt.Errorf("%w: %q", domain.ErrInvalidExpression, text)
	}
	for j := 0; j < len(right); j++ {
		if !isDigit(right[j]) {
			return Expression{}, fmt.Errorf("%w: %q", domain.ErrInvalidExpression, text)
		}
	}

	a, err := strconv.Atoi(left)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %v", domain.ErrInvalidExpression, err)
	}
	b, err := strconv.Atoi(right)
	if err != nil {
		return Expression{}, fmt.Errorf("%w: %v", domain.ErrInvalidExpression, err)
	}
	return Expression{A: a, Op: op, B: b}, nil
}

// Eval parses and evaluates text in one step.
func Eval(text string) (float64, error) {
	expr, err := Parse(text)
	if err != nil {
		return 0, err
	}
	return expr.Evaluate()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
