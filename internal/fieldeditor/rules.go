package fieldeditor

import (
	"errors"
	"fmt"

	"github.com/oakwood-commons/hivedit/internal/cel"
	"github.com/oakwood-commons/hivedit/internal/store"
)

// ErrNoRules is returned when a rule factory is built from an empty rule list.
var ErrNoRules = errors.New("no field editor rules")

// Rule selects an editor for the fields its When predicate matches.
type Rule struct {
	Name  string
	When  string // CEL over field.name, field.type, field.type_name and key; empty matches all
	Split string // items separated by Split are edited one per line
	Types []store.FieldType
}

// DefaultRules edit string fields one semicolon-separated item per line.
func DefaultRules() []Rule {
	return []Rule{{Name: "default", Split: ";", Types: StringTypes}}
}

// RuleFactory returns a Factory that builds the editor of the first rule
// whose predicate matches the field. Predicates are compiled up front.
// A predicate that fails at evaluation is logged and treated as no match.
// A field no rule matches gets an editor that supports nothing.
func RuleFactory(eval *cel.Evaluator, rules []Rule) (Factory, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}
	for i, r := range rules {
		if err := eval.Check(orTrue(r.When)); err != nil {
			return nil, fmt.Errorf("rule %d %q: %w", i, r.Name, err)
		}
	}
	rules = append([]Rule(nil), rules...)

	return func(field *store.Field, old FieldEditor, frame Frame) FieldEditor {
		rule := rules[0]
		if field != nil {
			rule = match(eval, rules, field, frame)
		}
		if prev, ok := old.(*Filtered); ok && prev.rule == rule.Name {
			prev.SetField(field)
			return prev
		}
		if field == nil && old != nil {
			old.SetField(nil)
			return old
		}
		ed := NewFiltered(field, JoinLines(rule.Split), SplitToLines(rule.Split), frame, rule.Types...)
		ed.rule = rule.Name
		return ed
	}, nil
}

func match(eval *cel.Evaluator, rules []Rule, field *store.Field, frame Frame) Rule {
	facts := cel.Facts{
		Key:      field.Key().Path(),
		Name:     field.Name(),
		Type:     uint32(field.Type()),
		TypeName: field.Type().String(),
	}
	for _, r := range rules {
		ok, err := eval.Match(r.When, facts)
		if err != nil {
			frame.Log.V(1).Info("field editor rule failed", "rule", r.Name, "error", err.Error())
			continue
		}
		if ok {
			return r
		}
	}
	return Rule{}
}

func orTrue(expr string) string {
	if expr == "" {
		return "true"
	}
	return expr
}
