package value

import "fmt"

// Operator is the kind of an Operation.
type Operator uint8

const (
	Invalid Operator = iota
	Add
	Subtract
	Multiply
	Divide
	Modulo
	Negate
	UnaryPlus
	Less
	Greater
	LessEqual
	GreaterEqual
	Equal
	NotEqual
)

type operatorInfo struct {
	name   string
	symbol string
	method string
	arity  int
	cmp    bool
}

var operators = [...]operatorInfo{
	Invalid:      {name: "invalid"},
	Add:          {"add", "+", "Add", 2, false},
	Subtract:     {"subtract", "-", "Subtract", 2, false},
	Multiply:     {"multiply", "*", "Multiply", 2, false},
	Divide:       {"divide", "/", "Divide", 2, false},
	Modulo:       {"modulo", "%", "Mod", 2, false},
	Negate:       {"negate", "-", "Negate", 1, false},
	UnaryPlus:    {"plus", "+", "UnaryPlus", 1, false},
	Less:         {"less", "<", "Smaller", 2, true},
	Greater:      {"greater", ">", "Larger", 2, true},
	LessEqual:    {"less_equal", "<=", "SmallerEquals", 2, true},
	GreaterEqual: {"greater_equal", ">=", "LargerEquals", 2, true},
	Equal:        {"equal", "==", "Equal", 2, true},
	NotEqual:     {"not_equal", "!=", "NotEqual", 2, true},
}

func (o Operator) info() operatorInfo {
	if int(o) < len(operators) {
		return operators[o]
	}
	return operatorInfo{name: fmt.Sprintf("Operator(%d)", uint8(o))}
}

func (o Operator) String() string { return o.info().name }

// Symbol is the source token of the operator.
func (o Operator) Symbol() string { return o.info().symbol }

// MethodName is the name of the type-specific helper a specialized method
// calls in place of the generic operator.
func (o Operator) MethodName() string { return o.info().method }

// Arity is the number of operands the operator takes.
func (o Operator) Arity() int { return o.info().arity }

// IsComparison reports whether the operator yields a boolean rather than a
// value of its operands' numeric type.
func (o Operator) IsComparison() bool { return o.info().cmp }

var (
	binaryTokens = map[string]Operator{
		"+":  Add,
		"-":  Subtract,
		"*":  Multiply,
		"/":  Divide,
		"%":  Modulo,
		"<":  Less,
		">":  Greater,
		"<=": LessEqual,
		">=": GreaterEqual,
		"==": Equal,
		"!=": NotEqual,
	}
	unaryTokens = map[string]Operator{
		"-": Negate,
		"+": UnaryPlus,
	}
)

// BinaryOperator maps a binary operator token to its Operator.
func BinaryOperator(token string) (Operator, bool) {
	op, ok := binaryTokens[token]
	return op, ok
}

// UnaryOperator maps a unary operator token to its Operator.
func UnaryOperator(token string) (Operator, bool) {
	op, ok := unaryTokens[token]
	return op, ok
}
