// Package linter provides reference rules for rendered CloudFormation templates.
//
// Rules:
//
//	WEK001: Ref targets must be parameters, resources or pseudo-parameters
//	WEK002: Fn::GetAtt must name a resource
//	WEK003: Conditions used by resources and Fn::If must be declared
//	WEK004: Alarm actions must reference scaling policies guarded by the alarm's condition
//	WEK005: Fn::Sub variables must be defined
//	WEK006: Declared parameters should be referenced
package linter

import (
	"fmt"
	"sort"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/template"
	"github.com/lex00/wetwire-eks-go/intrinsics"
)

// Rule is the interface for lint rules.
type Rule interface {
	ID() string
	Description() string
	Check(tmpl *wetwire.Template) []Issue
}

// AllRules returns every rule in ID order.
func AllRules() []Rule {
	return []Rule{
		UndefinedRef{},
		UndefinedGetAtt{},
		UndefinedCondition{},
		AlarmPolicyMismatch{},
		UndefinedSubVariable{},
		UnusedParameter{},
	}
}

// section is one referencing part of a template, with its location.
type section struct {
	location string
	value    any
}

// sections returns every part of a template that may hold references, in a
// stable order.
func sections(tmpl *wetwire.Template) []section {
	var out []section
	for _, name := range sortedNames(tmpl.Conditions) {
		out = append(out, section{"Conditions." + name, tmpl.Conditions[name]})
	}
	for _, name := range sortedNames(tmpl.Resources) {
		res := tmpl.Resources[name]
		out = append(out, section{"Resources." + name + ".Properties", res.Properties})
		if res.UpdatePolicy != nil {
			out = append(out, section{"Resources." + name + ".UpdatePolicy", res.UpdatePolicy})
		}
	}
	for _, name := range sortedNames(tmpl.Outputs) {
		out = append(out, section{"Outputs." + name, map[string]any{
			"Value":  tmpl.Outputs[name].Value,
			"Export": exportName(tmpl.Outputs[name]),
		}})
	}
	return out
}

func exportName(out wetwire.Output) any {
	if out.Export == nil {
		return nil
	}
	return out.Export.Name
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func refDefined(tmpl *wetwire.Template, name string) bool {
	if intrinsics.PseudoParameters[name] {
		return true
	}
	if _, ok := tmpl.Parameters[name]; ok {
		return true
	}
	_, ok := tmpl.Resources[name]
	return ok
}

// UndefinedRef detects Ref targets that the template does not declare.
type UndefinedRef struct{}

func (r UndefinedRef) ID() string { return "WEK001" }
func (r UndefinedRef) Description() string {
	return "Ref targets must be parameters, resources or pseudo-parameters"
}

func (r UndefinedRef) Check(tmpl *wetwire.Template) []Issue {
	var issues []Issue
	for _, s := range sections(tmpl) {
		for _, name := range template.CollectReferences(s.value).Refs {
			if !refDefined(tmpl, name) {
				issues = append(issues, Issue{
					Rule:     r.ID(),
					Message:  fmt.Sprintf("Ref to undefined %s", name),
					Location: s.location,
					Severity: SeverityError,
				})
			}
		}
	}
	return issues
}

// UndefinedGetAtt detects Fn::GetAtt on resources that do not exist.
type UndefinedGetAtt struct{}

func (r UndefinedGetAtt) ID() string { return "WEK002" }
func (r UndefinedGetAtt) Description() string {
	return "Fn::GetAtt must name a resource"
}

func (r UndefinedGetAtt) Check(tmpl *wetwire.Template) []Issue {
	var issues []Issue
	for _, s := range sections(tmpl) {
		for _, name := range template.CollectReferences(s.value).GetAtts {
			if _, ok := tmpl.Resources[name]; !ok {
				issues = append(issues, Issue{
					Rule:     r.ID(),
					Message:  fmt.Sprintf("Fn::GetAtt on undefined resource %s", name),
					Location: s.location,
					Severity: SeverityError,
				})
			}
		}
	}
	return issues
}

// UndefinedCondition detects resource conditions and Fn::If conditions that
// are not declared.
type UndefinedCondition struct{}

func (r UndefinedCondition) ID() string { return "WEK003" }
func (r UndefinedCondition) Description() string {
	return "Conditions used by resources and Fn::If must be declared"
}

func (r UndefinedCondition) Check(tmpl *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range sortedNames(tmpl.Resources) {
		cond := tmpl.Resources[name].Condition
		if cond == "" {
			continue
		}
		if _, ok := tmpl.Conditions[cond]; !ok {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Message:  fmt.Sprintf("condition %s is not declared", cond),
				Location: "Resources." + name + ".Condition",
				Severity: SeverityError,
			})
		}
	}
	for _, s := range sections(tmpl) {
		for _, cond := range template.CollectReferences(s.value).Conditions {
			if _, ok := tmpl.Conditions[cond]; !ok {
				issues = append(issues, Issue{
					Rule:     r.ID(),
					Message:  fmt.Sprintf("condition %s is not declared", cond),
					Location: s.location,
					Severity: SeverityError,
				})
			}
		}
	}
	return issues
}

// AlarmPolicyMismatch detects alarms whose actions point at scaling policies
// that are missing or guarded by a different condition. Such an alarm would
// fail to deploy whenever the conditions disagree.
type AlarmPolicyMismatch struct{}

func (r AlarmPolicyMismatch) ID() string { return "WEK004" }
func (r AlarmPolicyMismatch) Description() string {
	return "Alarm actions must reference scaling policies guarded by the alarm's condition"
}

func (r AlarmPolicyMismatch) Check(tmpl *wetwire.Template) []Issue {
	var issues []Issue
	for _, name := range sortedNames(tmpl.Resources) {
		alarm := tmpl.Resources[name]
		if alarm.Type != "AWS::CloudWatch::Alarm" {
			continue
		}
		refs := template.CollectReferences(alarm.Properties["AlarmActions"]).Refs
		for _, target := range refs {
			policy, ok := tmpl.Resources[target]
			if !ok {
				issues = append(issues, Issue{
					Rule:     r.ID(),
					Message:  fmt.Sprintf("alarm action %s is not a resource", target),
					Location: "Resources." + name + ".Properties.AlarmActions",
					Severity: SeverityError,
				})
				continue
			}
			if policy.Condition != alarm.Condition {
				issues = append(issues, Issue{
					Rule: r.ID(),
					Message: fmt.Sprintf("alarm condition %q differs from condition %q of %s",
						alarm.Condition, policy.Condition, target),
					Location: "Resources." + name + ".Condition",
					Severity: SeverityError,
				})
			}
		}
	}
	return issues
}

// UndefinedSubVariable detects ${Name} variables in Fn::Sub that are neither
// declared nor bound by the variable map.
type UndefinedSubVariable struct{}

func (r UndefinedSubVariable) ID() string { return "WEK005" }
func (r UndefinedSubVariable) Description() string {
	return "Fn::Sub variables must be defined"
}

func (r UndefinedSubVariable) Check(tmpl *wetwire.Template) []Issue {
	var issues []Issue
	for _, s := range sections(tmpl) {
		for _, name := range template.CollectReferences(s.value).SubVars {
			if !refDefined(tmpl, name) {
				issues = append(issues, Issue{
					Rule:     r.ID(),
					Message:  fmt.Sprintf("Fn::Sub variable ${%s} is not defined", name),
					Location: s.location,
					Severity: SeverityError,
				})
			}
		}
	}
	return issues
}

// UnusedParameter detects parameters nothing in the template references.
type UnusedParameter struct{}

func (r UnusedParameter) ID() string { return "WEK006" }
func (r UnusedParameter) Description() string {
	return "Declared parameters should be referenced"
}

func (r UnusedParameter) Check(tmpl *wetwire.Template) []Issue {
	used := make(map[string]bool)
	for _, s := range sections(tmpl) {
		refs := template.CollectReferences(s.value)
		for _, name := range refs.Refs {
			used[name] = true
		}
		for _, name := range refs.SubVars {
			used[name] = true
		}
	}

	var issues []Issue
	for _, name := range sortedNames(tmpl.Parameters) {
		if !used[name] {
			issues = append(issues, Issue{
				Rule:     r.ID(),
				Message:  fmt.Sprintf("parameter %s is never referenced", name),
				Location: "Parameters." + name,
				Severity: SeverityWarning,
			})
		}
	}
	return issues
}
