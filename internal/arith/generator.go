package arith

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"mathquiz/internal/domain"
)

// MaxOperand is the largest operand drawn for a question.
const MaxOperand = 10

// Generator draws questions and answer sets. It is not safe for concurrent use;
// each controller owns its own.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator uses rnd, or a time-seeded source when rnd is nil.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rnd: rnd}
}

// Expression draws one question with operands in 1..MaxOperand.
func (g *Generator) Expression() Expression {
	return Expression{
		A:  g.operand(),
		Op: Ops[g.rnd.Intn(len(Ops))],
		B:  g.operand(),
	}
}

// operand rounds a scaled uniform draw up, so 0 only appears if the draw is exactly 0.
func (g *Generator) operand() int {
	v := int(math.Ceil(g.rnd.Float64() * MaxOperand))
	if v < 1 {
		v = 1
	}
	return v
}

// Questions returns n expressions that the evaluator accepts.
func (g *Generator) Questions(n int) []string {
	questions := make([]string, 0, n)
	for len(questions) < n {
		text := g.Expression().String()
		if _, err := Eval(text); err != nil {
			continue
		}
		questions = append(questions, text)
	}
	return questions
}

// Choices builds n shuffled answers for question, exactly one of them correct.
func (g *Generator) Choices(question string, n int) (domain.AnswerChoices, error) {
	if n < 1 || n > domain.MaxAnswers {
		return domain.AnswerChoices{}, fmt.Errorf("%w: %d answers", domain.ErrInvalidConfig, n)
	}
	correct, err := Eval(question)
	if err != nil {
		return domain.AnswerChoices{}, err
	}

	values := make([]float64, 1, n)
	values[0] = correct
	base := math.Floor(correct)
	for len(values) < n {
		decoy := base + float64(g.rnd.Intn(2*domain.DecoySpread+1)-domain.DecoySpread)
		if contains(values, decoy) {
			continue
		}
		values = append(values, decoy)
	}

	g.rnd.Shuffle(len(values), func(i, j int) {
		values[i], values[j] = values[j], values[i]
	})

	choices := domain.AnswerChoices{
		Values: values,
		Labels: make([]string, len(values)),
	}
	for i, v := range values {
		if v == correct {
			choices.CorrectIndex = i
		}
		choices.Labels[i] = FormatValue(v)
	}
	return choices, nil
}

// FormatValue renders an answer with at most two decimals.
func FormatValue(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func contains(values []float64, v float64) bool {
	for _, existing := range values {
		if existing == v {
			return true
		}
	}
	return false
}
