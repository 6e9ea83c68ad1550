package filter

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// skipRule is a compiled CEL expression over the message fields. A rule
// evaluating true marks the message as pass-through, letting operators mute
// bot commands, specific senders, and the like without code changes.
type skipRule struct {
	expression string
	program    cel.Program
}

func compileSkipRule(expression string) (skipRule, error) {
	env, err := cel.NewEnv(
		cel.Variable("text", cel.StringType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("source", cel.StringType),
	)
	if err != nil {
		return skipRule{}, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return skipRule{}, fmt.Errorf("failed to compile skip rule: %w", issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return skipRule{}, fmt.Errorf("skip rule must return bool, got %v", ast.OutputType())
	}

	program, err := env.Program(ast)
	if err != nil {
		return skipRule{}, fmt.Errorf("failed to create CEL program: %w", err)
	}

	return skipRule{expression: expression, program: program}, nil
}

func (r skipRule) eval(text, sender, source string) (bool, error) {
	result, _, err := r.program.Eval(map[string]interface{}{
		"text":   text,
		"sender": sender,
		"source": source,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate skip rule: %w", err)
	}

	matched, ok := result.Value().(bool)
	if !ok {
		return false, fmt.Errorf("skip rule did not return bool, got %T", result.Value())
	}

	return matched, nil
}
