// Package resolve previews a template the way CloudFormation would deploy it
// for a given set of parameter values.
//
// Conditions are evaluated, resources whose condition is false are dropped,
// Fn::If picks a branch and AWS::NoValue removes the property or list item it
// stands in for. Other intrinsics stay symbolic.
package resolve

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

// ErrMissingParameter is returned when a parameter has neither a value nor a default.
var ErrMissingParameter = errors.New("missing parameter value")

// ErrUnknownParameter is returned for values of parameters the template does not declare.
var ErrUnknownParameter = errors.New("unknown parameter")

// Options configures Resolve.
type Options struct {
	// SubstituteParameters replaces parameter Refs and ${Param} in Fn::Sub
	// with their values.
	SubstituteParameters bool
}

// Resolved is the deploy-time view of a template.
type Resolved struct {
	Template   *wetwire.Template
	Parameters map[string]string
	Conditions map[string]bool
	// Skipped lists resources dropped because their condition is false.
	Skipped []string
	// Warnings lists references to skipped resources.
	Warnings []string
}

// noValue marks a value removed by AWS::NoValue.
type noValue struct{}

const pseudoNoValue = "AWS::NoValue"

type resolver struct {
	tmpl       *wetwire.Template
	opts       Options
	params     map[string]string
	conditions map[string]bool
	evaluating map[string]bool
}

// Resolve evaluates tmpl for the given parameter values. Parameters without a
// value fall back to their default.
func Resolve(tmpl *wetwire.Template, params map[string]string, opts Options) (*Resolved, error) {
	r := &resolver{
		tmpl:       tmpl,
		opts:       opts,
		params:     make(map[string]string),
		conditions: make(map[string]bool),
		evaluating: make(map[string]bool),
	}

	if err := r.bindParameters(params); err != nil {
		return nil, err
	}

	for _, name := range sortedNames(tmpl.Conditions) {
		if _, err := r.condition(name); err != nil {
			return nil, err
		}
	}

	out := &wetwire.Template{
		AWSTemplateFormatVersion: tmpl.AWSTemplateFormatVersion,
		Description:              tmpl.Description,
		Parameters:               tmpl.Parameters,
		Resources:                make(map[string]wetwire.ResourceDef),
	}
	result := &Resolved{Template: out, Parameters: r.params, Conditions: r.conditions}

	for _, name := range sortedNames(tmpl.Resources) {
		res := tmpl.Resources[name]
		if res.Condition != "" && !r.conditions[res.Condition] {
			result.Skipped = append(result.Skipped, name)
			continue
		}

		props, err := r.value(res.Properties)
		if err != nil {
			return nil, fmt.Errorf("resource %s: %w", name, err)
		}
		def := wetwire.ResourceDef{Type: res.Type, DependsOn: res.DependsOn}
		if m, ok := props.(map[string]any); ok && len(m) > 0 {
			def.Properties = m
		}
		if res.UpdatePolicy != nil {
			policy, err := r.value(res.UpdatePolicy)
			if err != nil {
				return nil, fmt.Errorf("resource %s update policy: %w", name, err)
			}
			if m, ok := policy.(map[string]any); ok && len(m) > 0 {
				def.UpdatePolicy = m
			}
		}
		out.Resources[name] = def
	}

	if len(tmpl.Outputs) > 0 {
		out.Outputs = make(map[string]wetwire.Output, len(tmpl.Outputs))
		for _, name := range sortedNames(tmpl.Outputs) {
			o := tmpl.Outputs[name]
			value, err := r.value(o.Value)
			if err != nil {
				return nil, fmt.Errorf("output %s: %w", name, err)
			}
			resolved := wetwire.Output{Description: o.Description, Value: value}
			if o.Export != nil {
				exportName, err := r.value(o.Export.Name)
				if err != nil {
					return nil, fmt.Errorf("output %s export: %w", name, err)
				}
				resolved.Export = &wetwire.Export{Name: exportName}
			}
			out.Outputs[name] = resolved
		}
	}

	result.Warnings = danglingReferences(out, result.Skipped)
	return result, nil
}

func (r *resolver) bindParameters(values map[string]string) error {
	var unknown []string
	for name := range values {
		if _, ok := r.tmpl.Parameters[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownParameter, strings.Join(unknown, ", "))
	}

	var missing []string
	for _, name := range sortedNames(r.tmpl.Parameters) {
		param := r.tmpl.Parameters[name]
		if v, ok := values[name]; ok {
			r.params[name] = v
			continue
		}
		if param.Default != nil {
			r.params[name] = *param.Default
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingParameter, strings.Join(missing, ", "))
	}

	for name, v := range r.params {
		allowed := r.tmpl.Parameters[name].AllowedValues
		if len(allowed) > 0 && !contains(allowed, v) {
			return fmt.Errorf("parameter %s: %q is not one of %v", name, v, allowed)
		}
	}
	return nil
}

// condition evaluates a named condition once.
func (r *resolver) condition(name string) (bool, error) {
	if v, ok := r.conditions[name]; ok {
		return v, nil
	}
	expr, ok := r.tmpl.Conditions[name]
	if !ok {
		return false, fmt.Errorf("undefined condition %s", name)
	}
	if r.evaluating[name] {
		return false, fmt.Errorf("condition %s refers to itself", name)
	}
	r.evaluating[name] = true
	defer delete(r.evaluating, name)

	v, err := r.evalCondition(expr)
	if err != nil {
		return false, fmt.Errorf("condition %s: %w", name, err)
	}
	r.conditions[name] = v
	return v, nil
}

func (r *resolver) evalCondition(expr any) (bool, error) {
	fn, arg, ok := single(expr)
	if !ok {
		return false, fmt.Errorf("unsupported condition expression %v", expr)
	}

	switch fn {
	case "Condition":
		name, ok := arg.(string)
		if !ok {
			return false, errors.New("Condition must name a condition")
		}
		return r.condition(name)

	case "Fn::Equals":
		args, ok := arg.([]any)
		if !ok || len(args) != 2 {
			return false, errors.New("Fn::Equals takes two values")
		}
		a, err := r.scalar(args[0])
		if err != nil {
			return false, err
		}
		b, err := r.scalar(args[1])
		if err != nil {
			return false, err
		}
		return a == b, nil

	case "Fn::Not":
		args, ok := arg.([]any)
		if !ok || len(args) != 1 {
			return false, errors.New("Fn::Not takes one condition")
		}
		v, err := r.evalCondition(args[0])
		return !v, err

	case "Fn::And", "Fn::Or":
		args, ok := arg.([]any)
		if !ok || len(args) < 2 {
			return false, fmt.Errorf("%s takes at least two conditions", fn)
		}
		isAnd := fn == "Fn::And"
		for _, a := range args {
			v, err := r.evalCondition(a)
			if err != nil {
				return false, err
			}
			if isAnd && !v {
				return false, nil
			}
			if !isAnd && v {
				return true, nil
			}
		}
		return isAnd, nil

	default:
		return false, fmt.Errorf("unsupported condition function %s", fn)
	}
}

// scalar resolves an Fn::Equals operand to a string.
func (r *resolver) scalar(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(val), nil
	}
	if fn, arg, ok := single(v); ok && fn == "Ref" {
		name, _ := arg.(string)
		if value, ok := r.params[name]; ok {
			return value, nil
		}
		return "", fmt.Errorf("cannot compare Ref %s before deployment", name)
	}
	return "", fmt.Errorf("unsupported Fn::Equals operand %v", v)
}

// value resolves Fn::If and AWS::NoValue throughout v.
func (r *resolver) value(v any) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		if fn, arg, ok := single(val); ok {
			switch fn {
			case "Fn::If":
				args, ok := arg.([]any)
				if !ok || len(args) != 3 {
					return nil, errors.New("Fn::If takes a condition and two values")
				}
				name, _ := args[0].(string)
				cond, err := r.condition(name)
				if err != nil {
					return nil, err
				}
				if cond {
					return r.value(args[1])
				}
				return r.value(args[2])
			case "Ref":
				name, _ := arg.(string)
				if name == pseudoNoValue {
					return noValue{}, nil
				}
				if p, ok := r.params[name]; ok && r.opts.SubstituteParameters {
					return p, nil
				}
				return val, nil
			case "Fn::Sub":
				if body, ok := arg.(string); ok && r.opts.SubstituteParameters {
					return r.substitute(body), nil
				}
			}
		}
		out := make(map[string]any, len(val))
		for key, item := range val {
			resolved, err := r.value(item)
			if err != nil {
				return nil, err
			}
			if _, removed := resolved.(noValue); removed {
				continue
			}
			out[key] = resolved
		}
		return out, nil

	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			resolved, err := r.value(item)
			if err != nil {
				return nil, err
			}
			if _, removed := resolved.(noValue); removed {
				continue
			}
			out = append(out, resolved)
		}
		return out, nil

	default:
		return v, nil
	}
}

// substitute replaces ${Param} in a Fn::Sub body. The result is a plain
// string when no variables remain.
func (r *resolver) substitute(body string) any {
	result := body
	for name, value := range r.params {
		result = strings.ReplaceAll(result, "${"+name+"}", value)
	}
	left := template.CollectReferences(map[string]any{"Fn::Sub": result})
	if len(left.SubVars) > 0 || len(left.GetAtts) > 0 {
		return map[string]any{"Fn::Sub": result}
	}
	return strings.ReplaceAll(result, "${!", "${")
}

// danglingReferences reports references from kept resources and outputs to
// skipped resources.
func danglingReferences(tmpl *wetwire.Template, skipped []string) []string {
	if len(skipped) == 0 {
		return nil
	}
	gone := make(map[string]bool, len(skipped))
	for _, name := range skipped {
		gone[name] = true
	}

	var warnings []string
	check := func(owner string, v any) {
		refs := template.CollectReferences(v)
		for _, names := range [][]string{refs.Refs, refs.GetAtts} {
			for _, name := range names {
				if gone[name] {
					warnings = append(warnings, fmt.Sprintf("%s references skipped resource %s", owner, name))
				}
			}
		}
	}
	for _, name := range sortedNames(tmpl.Resources) {
		check("resource "+name, tmpl.Resources[name].Properties)
	}
	for _, name := range sortedNames(tmpl.Outputs) {
		check("output "+name, tmpl.Outputs[name].Value)
	}
	return warnings
}

// single returns the only key of a one-entry map.
func single(v any) (string, any, bool) {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return "", nil, false
	}
	for k, val := range m {
		return k, val, true
	}
	return "", nil, false
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
