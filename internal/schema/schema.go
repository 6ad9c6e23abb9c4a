// Package schema validates parsed configuration documents against a set of
// named CEL rules. Each rule is a boolean expression evaluated with the
// document bound to the variable `config`; a rule that evaluates to false, to
// a non-boolean, or that fails to evaluate marks the document invalid.
package schema

import (
	"errors"
	"fmt"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"
)

// ErrSchemaViolation is returned when a document fails one of the rules.
var ErrSchemaViolation = errors.New("schema violation")

// Validator checks a parsed configuration document.
type Validator interface {
	Validate(doc map[string]any) error
}

// Rule is a named CEL boolean expression, e.g.
// `has(config.db) && config.db.host != ""`.
type Rule struct {
	Name string `yaml:"name"`
	Expr string `yaml:"expr"`
}

// CELValidator evaluates compiled CEL rules against documents. Rules compile
// once at construction and may be reused across documents.
type CELValidator struct {
	rules []compiledRule
}

type compiledRule struct {
	rule    Rule
	program cel.Program
}

// NewCELValidator compiles the provided rules. A rule with an empty
// expression or one that does not compile fails construction.
func NewCELValidator(rules ...Rule) (*CELValidator, error) {
	env, err := cel.NewEnv(
		cel.Variable("config", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		return nil, fmt.Errorf("build CEL environment: %w", err)
	}

	compiled := make([]compiledRule, 0, len(rules))
	for _, rule := range rules {
		if rule.Expr == "" {
			return nil, fmt.Errorf("rule %q: expression must not be empty", rule.Name)
		}
		ast, issues := env.Compile(rule.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("compile rule %q: %w", rule.Name, issues.Err())
		}
		program, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("build program for rule %q: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: rule, program: program})
	}

	return &CELValidator{rules: compiled}, nil
}

// Validate evaluates every rule against doc and returns an ErrSchemaViolation
// describing the first rule that does not hold.
func (v *CELValidator) Validate(doc map[string]any) error {
	if doc == nil {
		doc = map[string]any{}
	}

	for _, compiled := range v.rules {
		out, _, err := compiled.program.Eval(map[string]any{"config": doc})
		if err != nil {
			return fmt.Errorf("%w: rule %q: %v", ErrSchemaViolation, compiled.rule.Name, err)
		}
		holds, ok := out.Value().(bool)
		if !ok {
			return fmt.Errorf("%w: rule %q did not evaluate to a boolean", ErrSchemaViolation, compiled.rule.Name)
		}
		if !holds {
			return fmt.Errorf("%w: rule %q failed", ErrSchemaViolation, compiled.rule.Name)
		}
	}
	return nil
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// ParseRules reads a YAML rule file of the form:
//
//	rules:
//	  - name: db-host-set
//	    expr: has(config.db) && config.db.host != ""
func ParseRules(data []byte) ([]Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rule file: %w", err)
	}
	if len(file.Rules) == 0 {
		return nil, fmt.Errorf("rule file declares no rules")
	}
	return file.Rules, nil
}
