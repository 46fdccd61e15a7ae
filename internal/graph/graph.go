// Package graph generates DOT and Mermaid dependency graphs from built templates.
package graph

import (
	"io"
	"sort"
	"strings"

	"github.com/emicklei/dot"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/template"
)

// Format specifies the output format for the graph.
type Format string

const (
	// FormatDOT outputs Graphviz DOT format.
	FormatDOT Format = "dot"
	// FormatMermaid outputs Mermaid format for GitHub/markdown rendering.
	FormatMermaid Format = "mermaid"
)

// Generator creates dependency graphs from templates.
type Generator struct {
	// IncludeParameters adds parameter nodes and the edges pointing at them.
	IncludeParameters bool

	// Format specifies the output format (dot or mermaid). Defaults to dot.
	Format Format

	// ClusterByType groups resources by AWS service.
	ClusterByType bool
}

type edge struct {
	from, to string
	getAtt   bool
}

// Generate creates a dependency graph of tmpl and writes it to w.
func (g *Generator) Generate(tmpl *wetwire.Template, w io.Writer) error {
	graph := g.buildGraph(tmpl)

	var output string
	if g.Format == FormatMermaid {
		output = dot.MermaidGraph(graph, dot.MermaidTopToBottom)
	} else {
		output = graph.String()
	}

	_, err := io.WriteString(w, output)
	return err
}

// GenerateString returns the graph as a string.
func (g *Generator) GenerateString(tmpl *wetwire.Template) (string, error) {
	var sb strings.Builder
	if err := g.Generate(tmpl, &sb); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (g *Generator) buildGraph(tmpl *wetwire.Template) *dot.Graph {
	graph := dot.NewGraph(dot.Directed)
	graph.Attr("rankdir", "TB")

	graph.NodeInitializer(func(n dot.Node) {
		n.Attr("shape", "box")
		n.Attr("fontname", "Arial")
	})
	graph.EdgeInitializer(func(e dot.Edge) {
		e.Attr("fontname", "Arial")
		e.Attr("fontsize", "10")
	})

	nodes := make(map[string]dot.Node)
	if g.ClusterByType {
		g.addClusteredNodes(graph, tmpl, nodes)
	} else {
		for _, name := range sortedNames(tmpl.Resources) {
			nodes[name] = resourceNode(graph, name, tmpl.Resources[name])
		}
	}

	if g.IncludeParameters {
		for _, name := range sortedNames(tmpl.Parameters) {
			n := graph.Node(name)
			n.Attr("shape", "ellipse")
			n.Attr("style", "dashed")
			n.Label(name)
			nodes[name] = n
		}
	}

	for _, e := range dependencies(tmpl) {
		from, okFrom := nodes[e.from]
		to, okTo := nodes[e.to]
		if !okFrom || !okTo {
			continue
		}
		de := graph.Edge(from, to)
		if e.getAtt {
			de.Attr("color", "blue")
		}
		if tmpl.Resources[e.from].Condition != "" {
			de.Attr("style", "dashed")
			de.Label(tmpl.Resources[e.from].Condition)
		}
	}

	return graph
}

func resourceNode(g *dot.Graph, name string, res wetwire.ResourceDef) dot.Node {
	n := g.Node(name)
	n.Label(name + "\\n[" + res.Type + "]")
	if res.Condition != "" {
		n.Attr("style", "dashed")
	}
	return n
}

// addClusteredNodes groups resources of the same AWS service into a subgraph.
// A service with a single resource stays at the top level.
func (g *Generator) addClusteredNodes(graph *dot.Graph, tmpl *wetwire.Template, nodes map[string]dot.Node) {
	byService := make(map[string][]string)
	for _, name := range sortedNames(tmpl.Resources) {
		service := extractService(tmpl.Resources[name].Type)
		byService[service] = append(byService[service], name)
	}

	for _, service := range sortedNames(byService) {
		names := byService[service]
		parent := graph
		if len(names) > 1 {
			parent = graph.Subgraph("cluster_"+service, dot.ClusterOption{})
			parent.Attr("label", service)
			parent.Attr("style", "rounded")
			parent.Attr("bgcolor", "lightyellow")
		}
		for _, name := range names {
			nodes[name] = resourceNode(parent, name, tmpl.Resources[name])
		}
	}
}

// dependencies lists one edge per referencing resource and referenced name.
func dependencies(tmpl *wetwire.Template) []edge {
	var edges []edge
	for _, name := range sortedNames(tmpl.Resources) {
		res := tmpl.Resources[name]
		refs := template.CollectReferences(map[string]any{
			"Properties":   res.Properties,
			"UpdatePolicy": res.UpdatePolicy,
		})

		getAtt := make(map[string]bool)
		for _, target := range refs.GetAtts {
			getAtt[target] = true
		}

		seen := make(map[string]bool)
		targets := append(append(append([]string{}, refs.Refs...), refs.GetAtts...), refs.SubVars...)
		targets = append(targets, res.DependsOn...)
		sort.Strings(targets)
		for _, target := range targets {
			if seen[target] || target == name {
				continue
			}
			seen[target] = true
			edges = append(edges, edge{from: name, to: target, getAtt: getAtt[target]})
		}
	}
	return edges
}

// extractService returns the service segment of a CloudFormation type.
// e.g., "AWS::AutoScaling::AutoScalingGroup" -> "AutoScaling"
func extractService(cfType string) string {
	parts := strings.Split(cfType, "::")
	if len(parts) == 3 {
		return parts[1]
	}
	return "Other"
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
