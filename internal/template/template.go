// Package template provides CloudFormation template building from typed resources.
package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/serialize"
	"github.com/lex00/wetwire-eks-go/intrinsics"
)

// FormatVersion is the only CloudFormation template format version.
const FormatVersion = "2010-09-09"

// Builder constructs CloudFormation templates from typed resources.
type Builder struct {
	description string
	parameters  map[string]wetwire.Parameter
	conditions  map[string]any
	resources   map[string]*resourceEntry
	outputs     map[string]outputEntry
	errs        []error
}

type resourceEntry struct {
	value        wetwire.Resource
	condition    string
	dependsOn    []string
	updatePolicy any

	// Filled in by Build.
	def          wetwire.ResourceDef
	dependencies []string
}

type outputEntry struct {
	description string
	value       any
	exportName  any
}

// ResourceOption sets a resource attribute outside of Properties.
type ResourceOption func(*resourceEntry)

// WithCondition guards the resource with a template condition.
func WithCondition(name string) ResourceOption {
	return func(e *resourceEntry) { e.condition = name }
}

// WithUpdatePolicy sets the UpdatePolicy resource attribute.
func WithUpdatePolicy(policy any) ResourceOption {
	return func(e *resourceEntry) { e.updatePolicy = policy }
}

// WithDependsOn adds explicit dependencies.
func WithDependsOn(names ...string) ResourceOption {
	return func(e *resourceEntry) { e.dependsOn = append(e.dependsOn, names...) }
}

// NewBuilder creates an empty template builder.
func NewBuilder() *Builder {
	return &Builder{
		parameters: make(map[string]wetwire.Parameter),
		conditions: make(map[string]any),
		resources:  make(map[string]*resourceEntry),
		outputs:    make(map[string]outputEntry),
	}
}

// SetDescription sets the template description.
func (b *Builder) SetDescription(description string) {
	b.description = description
}

// AddParameter declares a template parameter.
func (b *Builder) AddParameter(name string, param wetwire.Parameter) {
	if b.nameTaken(name) {
		b.errs = append(b.errs, fmt.Errorf("duplicate logical name: %s", name))
		return
	}
	if param.Type == "" {
		param.Type = "String"
	}
	b.parameters[name] = param
}

// HasParameter reports whether a parameter has been declared.
func (b *Builder) HasParameter(name string) bool {
	_, ok := b.parameters[name]
	return ok
}

// SetParameterDefault replaces the default of a declared parameter.
func (b *Builder) SetParameterDefault(name, value string) error {
	param, ok := b.parameters[name]
	if !ok {
		return fmt.Errorf("parameter %s is not declared", name)
	}
	param.Default = &value
	b.parameters[name] = param
	return nil
}

// AddCondition declares a template condition. The expression is usually an
// intrinsic such as intrinsics.Equals.
func (b *Builder) AddCondition(name string, expr any) {
	if _, exists := b.conditions[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate condition: %s", name))
		return
	}
	b.conditions[name] = expr
}

// AddResource adds a resource under a logical name.
func (b *Builder) AddResource(name string, res wetwire.Resource, opts ...ResourceOption) {
	if b.nameTaken(name) {
		b.errs = append(b.errs, fmt.Errorf("duplicate logical name: %s", name))
		return
	}
	entry := &resourceEntry{value: res}
	for _, opt := range opts {
		opt(entry)
	}
	b.resources[name] = entry
}

// AddOutput adds a stack output. A nil exportName leaves the output unexported.
func (b *Builder) AddOutput(name, description string, value, exportName any) {
	if _, exists := b.outputs[name]; exists {
		b.errs = append(b.errs, fmt.Errorf("duplicate output: %s", name))
		return
	}
	b.outputs[name] = outputEntry{description: description, value: value, exportName: exportName}
}

func (b *Builder) nameTaken(name string) bool {
	if _, ok := b.parameters[name]; ok {
		return true
	}
	_, ok := b.resources[name]
	return ok
}

// Build constructs the CloudFormation template. It fails on duplicate names,
// references to undeclared names and circular dependencies.
func (b *Builder) Build() (*wetwire.Template, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	template := &wetwire.Template{
		AWSTemplateFormatVersion: FormatVersion,
		Description:              b.description,
		Resources:                make(map[string]wetwire.ResourceDef, len(b.resources)),
	}

	var problems []string

	// Build Parameters section
	if len(b.parameters) > 0 {
		template.Parameters = make(map[string]wetwire.Parameter, len(b.parameters))
		for name, param := range b.parameters {
			template.Parameters[name] = param
		}
	}

	// Build Conditions section
	if len(b.conditions) > 0 {
		template.Conditions = make(map[string]any, len(b.conditions))
		for name, expr := range b.conditions {
			value, err := serialize.Value(expr)
			if err != nil {
				return nil, fmt.Errorf("serializing condition %s: %w", name, err)
			}
			template.Conditions[name] = value
			problems = append(problems, b.checkReferences("condition "+name, value)...)
		}
	}

	for _, name := range b.resourceNames() {
		entry := b.resources[name]

		props, err := serialize.Resource(entry.value)
		if err != nil {
			return nil, fmt.Errorf("serializing %s: %w", name, err)
		}

		def := wetwire.ResourceDef{
			Type:       entry.value.ResourceType(),
			Condition:  entry.condition,
			DependsOn:  entry.dependsOn,
			Properties: props,
		}
		if entry.updatePolicy != nil {
			policy, err := serialize.Value(entry.updatePolicy)
			if err != nil {
				return nil, fmt.Errorf("serializing update policy of %s: %w", name, err)
			}
			policyMap, ok := policy.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("update policy of %s is not a mapping", name)
			}
			def.UpdatePolicy = policyMap
		}

		if entry.condition != "" {
			if _, ok := b.conditions[entry.condition]; !ok {
				problems = append(problems, fmt.Sprintf("resource %s: undefined condition %s", name, entry.condition))
			}
		}
		for _, dep := range entry.dependsOn {
			if _, ok := b.resources[dep]; !ok {
				problems = append(problems, fmt.Sprintf("resource %s: DependsOn undefined resource %s", name, dep))
			}
		}
		problems = append(problems, b.checkReferences("resource "+name, props)...)

		entry.def = def
		entry.dependencies = b.dependenciesOf(entry, props)
		template.Resources[name] = def
	}

	// Build Outputs section
	if len(b.outputs) > 0 {
		template.Outputs = make(map[string]wetwire.Output, len(b.outputs))
		for name, out := range b.outputs {
			value, err := serialize.Value(out.value)
			if err != nil {
				return nil, fmt.Errorf("serializing output %s: %w", name, err)
			}
			output := wetwire.Output{Description: out.description, Value: value}
			problems = append(problems, b.checkReferences("output "+name, value)...)
			if out.exportName != nil {
				exportName, err := serialize.Value(out.exportName)
				if err != nil {
					return nil, fmt.Errorf("serializing export of %s: %w", name, err)
				}
				output.Export = &wetwire.Export{Name: exportName}
				problems = append(problems, b.checkReferences("output "+name, exportName)...)
			}
			template.Outputs[name] = output
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return nil, fmt.Errorf("invalid template:\n  %s", strings.Join(problems, "\n  "))
	}

	if _, err := b.topologicalSort(); err != nil {
		return nil, err
	}

	return template, nil
}

// Order returns resource names in dependency order. It is only meaningful
// after a successful Build.
func (b *Builder) Order() ([]string, error) {
	return b.topologicalSort()
}

// checkReferences reports every Ref, GetAtt, Fn::If condition and Fn::Sub
// variable in value that does not name something declared.
func (b *Builder) checkReferences(owner string, value any) []string {
	refs := CollectReferences(value)
	var problems []string
	for _, name := range refs.Refs {
		if !b.refDefined(name) {
			problems = append(problems, fmt.Sprintf("%s: undefined reference %s", owner, name))
		}
	}
	for _, name := range refs.SubVars {
		if !b.refDefined(name) {
			problems = append(problems, fmt.Sprintf("%s: undefined Fn::Sub variable %s", owner, name))
		}
	}
	for _, name := range refs.GetAtts {
		if _, ok := b.resources[name]; !ok {
			problems = append(problems, fmt.Sprintf("%s: Fn::GetAtt on undefined resource %s", owner, name))
		}
	}
	for _, name := range refs.Conditions {
		if _, ok := b.conditions[name]; !ok {
			problems = append(problems, fmt.Sprintf("%s: undefined condition %s", owner, name))
		}
	}
	return problems
}

func (b *Builder) refDefined(name string) bool {
	if intrinsics.PseudoParameters[name] {
		return true
	}
	if _, ok := b.parameters[name]; ok {
		return true
	}
	_, ok := b.resources[name]
	return ok
}

// dependenciesOf returns the resources an entry depends on, from DependsOn and
// from Ref/GetAtt/Fn::Sub references in its properties.
func (b *Builder) dependenciesOf(entry *resourceEntry, props map[string]any) []string {
	deps := make(map[string]bool)
	for _, dep := range entry.dependsOn {
		deps[dep] = true
	}
	refs := CollectReferences(props)
	for _, names := range [][]string{refs.Refs, refs.GetAtts, refs.SubVars} {
		for _, name := range names {
			if _, ok := b.resources[name]; ok {
				deps[name] = true
			}
		}
	}
	return sortedKeys(deps)
}

func (b *Builder) resourceNames() []string {
	names := make([]string, 0, len(b.resources))
	for name := range b.resources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// topologicalSort returns resources in dependency order.
func (b *Builder) topologicalSort() ([]string, error) {
	// Build adjacency list
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for name := range b.resources {
		graph[name] = nil
		inDegree[name] = 0
	}

	for name, res := range b.resources {
		for _, dep := range res.dependencies {
			if _, exists := b.resources[dep]; exists {
				graph[dep] = append(graph[dep], name)
				inDegree[name]++
			}
		}
	}

	// Kahn's algorithm
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue) // Deterministic order

	var result []string
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range graph[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue) // Keep sorted for determinism
			}
		}
	}

	// Check for cycles
	if len(result) != len(b.resources) {
		return nil, b.detectCycle()
	}

	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (b *Builder) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(node string) bool
	findCycle = func(node string) bool {
		visited[node] = true
		path[node] = true

		for _, dep := range b.resources[node].dependencies {
			if _, exists := b.resources[dep]; !exists {
				continue
			}
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{node}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, node}, cycle...)
				return true
			}
		}

		path[node] = false
		return false
	}

	for _, name := range b.resourceNames() {
		if !visited[name] {
			if findCycle(name) {
				break
			}
		}
	}

	if len(cycle) > 0 {
		msg := "circular dependency detected:\n"
		for i, name := range cycle {
			msg += fmt.Sprintf("  %s (%s)", name, b.resources[name].def.Type)
			if i < len(cycle)-1 {
				msg += "\n    → "
			}
		}
		return errors.New(msg)
	}

	return errors.New("circular dependency detected")
}

// ToJSON serializes the template to JSON.
func ToJSON(t *wetwire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *wetwire.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
