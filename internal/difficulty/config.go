package difficulty

// Operator is an arithmetic operator permitted at a level.
type Operator string

const (
	Add      Operator = "+"
	Subtract Operator = "-"
	Multiply Operator = "*"
	Divide   Operator = "/"
)

// Config is the static puzzle configuration of a level.
type Config struct {
	Level            Level      `json:"level" yaml:"level"`
	MinOperand       int        `json:"min_operand" yaml:"min_operand"`
	MaxOperand       int        `json:"max_operand" yaml:"max_operand"`
	Operators        []Operator `json:"operators" yaml:"operators"`
	TimeLimitSeconds float64    `json:"time_limit_seconds" yaml:"time_limit_seconds"`
}

var table = map[Level]Config{
	Easy: {
		Level:            Easy,
		MinOperand:       1,
		MaxOperand:       10,
		Operators:        []Operator{Add, Subtract},
		TimeLimitSeconds: 30,
	},
	Medium: {
		Level:            Medium,
		MinOperand:       5,
		MaxOperand:       20,
		Operators:        []Operator{Add, Subtract, Multiply},
		TimeLimitSeconds: 20,
	},
	Hard: {
		Level:            Hard,
		MinOperand:       10,
		MaxOperand:       50,
		Operators:        []Operator{Add, Subtract, Multiply, Divide},
		TimeLimitSeconds: 15,
	},
}

// ConfigFor returns the configuration of l. The second result is false for
// an invalid level. The returned value is a copy and may be modified freely.
func ConfigFor(l Level) (Config, bool) {
	cfg, ok := table[l]
	if !ok {
		return Config{}, false
	}
	cfg.Operators = append([]Operator(nil), cfg.Operators...)
	return cfg, true
}

// MustConfigFor is ConfigFor for callers that have already validated l.
func MustConfigFor(l Level) Config {
	cfg, ok := ConfigFor(l)
	if !ok {
		panic("difficulty: no configuration for " + l.String())
	}
	return cfg
}

// Table returns the configuration of every level in ascending order.
func Table() []Config {
	out := make([]Config, 0, len(table))
	for _, l := range Levels() {
		out = append(out, MustConfigFor(l))
	}
	return out
}
