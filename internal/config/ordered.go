package config

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// OrderedMap is a string map that remembers insertion order.
type OrderedMap struct {
	keys   []string
	values map[string]string
}

// NewOrderedMap builds an OrderedMap from alternating key/value pairs.
func NewOrderedMap(pairs ...string) *OrderedMap {
	m := &OrderedMap{}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// Set adds or replaces a key. Replacing keeps the original position.
func (m *OrderedMap) Set(key, value string) {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value for key.
func (m *OrderedMap) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap) Keys() []string {
	if m == nil {
		return nil
	}
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *OrderedMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// UnmarshalYAML decodes a mapping of scalars, keeping document order.
func (m *OrderedMap) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: value of %s must be a scalar", value.Line, key.Value)
		}
		m.Set(key.Value, value.Value)
	}
	return nil
}

// Policies is the ordered list of named IAM policies.
type Policies []Policy

type policyBody struct {
	Action   any `yaml:"action"`
	Resource any `yaml:"resource"`
}

// UnmarshalYAML decodes {name: {action, resource}} keeping document order.
func (p *Policies) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: iam_policies must be a mapping", node.Line)
	}
	policies := make(Policies, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		var body policyBody
		if err := node.Content[i+1].Decode(&body); err != nil {
			return fmt.Errorf("iam policy %s: %w", name, err)
		}
		policies = append(policies, Policy{Name: name, Action: body.Action, Resource: body.Resource})
	}
	*p = policies
	return nil
}

// UnmarshalYAML decodes the single-key update policy mapping.
func (u *UpdatePolicy) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: asg_update_policy must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		kind := node.Content[i].Value
		if u.Kind != "" {
			u.extra = append(u.extra, kind)
			continue
		}
		var body any
		if err := node.Content[i+1].Decode(&body); err != nil {
			return fmt.Errorf("asg_update_policy %s: %w", kind, err)
		}
		u.Kind = kind
		u.Body = body
	}
	return nil
}

// UnmarshalYAML decodes eks_autoscale. Thresholds may be plain or quoted
// numbers, and a null high threshold still counts as configured.
func (a *Autoscale) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: eks_autoscale must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		var err error
		switch key {
		case "memory_high":
			a.memoryKey = true
			a.MemoryHigh, err = decodeThreshold(value)
		case "memory_low":
			a.MemoryLow, err = decodeThreshold(value)
		case "cpu_high":
			a.cpuKey = true
			a.CPUHigh, err = decodeThreshold(value)
		case "cpu_low":
			a.CPULow, err = decodeThreshold(value)
		case "scale_up_adjustment":
			a.ScaleUpAdjustment, err = decodeAdjustment(value)
		case "scale_down_adjustment":
			a.ScaleDownAdjustment, err = decodeAdjustment(value)
		default:
			return fmt.Errorf("line %d: eks_autoscale: unknown key %q", node.Content[i].Line, key)
		}
		if err != nil {
			return fmt.Errorf("eks_autoscale.%s: %w", key, err)
		}
	}
	return nil
}

func decodeThreshold(node *yaml.Node) (*float64, error) {
	if node.ShortTag() == "!!null" {
		return nil, nil
	}
	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("line %d: threshold must be a number", node.Line)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(node.Value), 64)
	if err != nil {
		return nil, fmt.Errorf("line %d: threshold %q is not a number", node.Line, node.Value)
	}
	return &f, nil
}

func decodeAdjustment(node *yaml.Node) (*int, error) {
	if node.ShortTag() == "!!null" {
		return nil, nil
	}
	var n int
	if err := node.Decode(&n); err != nil {
		return nil, err
	}
	return &n, nil
}
