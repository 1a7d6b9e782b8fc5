package puzzle

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/vytor/mathflash/internal/difficulty"
)

// Problem is a generated arithmetic puzzle.
type Problem struct {
	Operand1         int
	Operand2         int
	Operator         difficulty.Operator
	Answer           int
	Difficulty       difficulty.Level
	TimeLimitSeconds float64
}

// Generator produces problems for a difficulty level.
type Generator interface {
	Generate(level difficulty.Level) (Problem, error)
}

type randomGenerator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator returns a Generator drawing from rng. A nil rng uses a
// randomly seeded source.
func NewGenerator(rng *rand.Rand) Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &randomGenerator{rng: rng}
}

// NewSeededGenerator returns a deterministic Generator.
func NewSeededGenerator(seed uint64) Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed)))
}

func (g *randomGenerator) Generate(level difficulty.Level) (Problem, error) {
	cfg, ok := difficulty.ConfigFor(level)
	if !ok {
		return Problem{}, fmt.Errorf("no puzzle configuration for %s", level)
	}

	g.mu.Lock()
	a := cfg.MinOperand + g.rng.IntN(cfg.MaxOperand-cfg.MinOperand+1)
	b := cfg.MinOperand + g.rng.IntN(cfg.MaxOperand-cfg.MinOperand+1)
	op := cfg.Operators[g.rng.IntN(len(cfg.Operators))]
	g.mu.Unlock()

	answer, err := Apply(a, op, b)
	if err != nil {
		return Problem{}, err
	}

	return Problem{
		Operand1:         a,
		Operand2:         b,
		Operator:         op,
		Answer:           answer,
		Difficulty:       level,
		TimeLimitSeconds: cfg.TimeLimitSeconds,
	}, nil
}

// Apply evaluates a op b. Division floors toward negative infinity.
func Apply(a int, op difficulty.Operator, b int) (int, error) {
	switch op {
	case difficulty.Add:
		return a + b, nil
	case difficulty.Subtract:
		return a - b, nil
	case difficulty.Multiply:
		return a * b, nil
	case difficulty.Divide:
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		q := a / b
		if (a%b != 0) && ((a < 0) != (b < 0)) {
			q--
		}
		return q, nil
	default:
		return 0, fmt.Errorf("unsupported operator %q", op)
	}
}
