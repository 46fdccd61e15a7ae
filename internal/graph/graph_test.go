package graph

import (
	"strings"
	"testing"

	wetwire "github.com/lex00/wetwire-eks-go"
	"github.com/lex00/wetwire-eks-go/internal/component"
	"github.com/lex00/wetwire-eks-go/internal/config"
)

func testTemplate() *wetwire.Template {
	return &wetwire.Template{
		Parameters: map[string]wetwire.Parameter{
			"EnvironmentName": {Type: "String"},
		},
		Resources: map[string]wetwire.ResourceDef{
			"Role": {
				Type: "AWS::IAM::Role",
			},
			"InstanceProfile": {
				Type:       "AWS::IAM::InstanceProfile",
				Properties: map[string]any{"Roles": []any{map[string]any{"Ref": "Role"}}},
			},
			"EksCluster": {
				Type: "AWS::EKS::Cluster",
				Properties: map[string]any{
					"RoleArn": map[string]any{"Fn::GetAtt": []any{"Role", "Arn"}},
					"Name":    map[string]any{"Fn::Sub": "${EnvironmentName}-main"},
				},
			},
			"ScaleUpPolicy": {
				Type:       "AWS::AutoScaling::ScalingPolicy",
				Condition:  "IsScalingEnabled",
				Properties: map[string]any{"AutoScalingGroupName": map[string]any{"Ref": "AutoScaleGroup"}},
			},
			"AutoScaleGroup": {
				Type:      "AWS::AutoScaling::AutoScalingGroup",
				DependsOn: []string{"InstanceProfile"},
			},
		},
	}
}

func TestGenerator_Generate_SimpleGraph(t *testing.T) {
	gen := &Generator{}
	var sb strings.Builder
	if err := gen.Generate(testTemplate(), &sb); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := sb.String()

	if !strings.Contains(output, "digraph") {
		t.Error("expected digraph declaration")
	}
	for _, name := range []string{"Role", "InstanceProfile", "EksCluster", "AutoScaleGroup"} {
		if !strings.Contains(output, name) {
			t.Errorf("expected %s node", name)
		}
	}
	if !strings.Contains(output, "AWS::IAM::InstanceProfile") {
		t.Error("expected resource type in node label")
	}
	if strings.Contains(output, "ellipse") {
		t.Error("expected no parameter nodes by default")
	}
}

func TestGenerator_Generate_WithGetAtt(t *testing.T) {
	output, err := (&Generator{}).GenerateString(testTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "blue") {
		t.Error("expected blue color for GetAtt edge")
	}
}

func TestGenerator_Generate_ConditionalResource(t *testing.T) {
	output, err := (&Generator{}).GenerateString(testTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "dashed") {
		t.Error("expected dashed style for conditional resource")
	}
	if !strings.Contains(output, "IsScalingEnabled") {
		t.Error("expected condition label on conditional edge")
	}
}

func TestGenerator_Generate_WithParameters(t *testing.T) {
	gen := &Generator{IncludeParameters: true}
	output, err := gen.GenerateString(testTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "EnvironmentName") {
		t.Error("expected EnvironmentName parameter node")
	}
	if !strings.Contains(output, "ellipse") {
		t.Error("expected ellipse shape for parameter")
	}
}

func TestGenerator_Generate_ClusterByType(t *testing.T) {
	gen := &Generator{ClusterByType: true}
	output, err := gen.GenerateString(testTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "subgraph cluster_") {
		t.Error("expected cluster subgraphs")
	}
	if !strings.Contains(output, `label="IAM"`) {
		t.Error("expected IAM cluster subgraph")
	}
	if !strings.Contains(output, `label="AutoScaling"`) {
		t.Error("expected AutoScaling cluster subgraph")
	}
	if strings.Contains(output, `label="EKS"`) {
		t.Error("expected single EKS resource outside a cluster")
	}
}

func TestGenerator_Generate_MermaidFormat(t *testing.T) {
	gen := &Generator{Format: FormatMermaid}
	output, err := gen.GenerateString(testTemplate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(output, "graph") && !strings.Contains(output, "flowchart") {
		t.Errorf("expected mermaid graph/flowchart, got:\n%s", output)
	}
	if strings.Contains(output, "digraph") {
		t.Error("expected mermaid format, not DOT")
	}
}

func TestGenerator_Generate_Deterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Autoscale = &config.Autoscale{MemoryHigh: floatPtr(70), CPUHigh: floatPtr(80)}
	tmpl, err := component.Assemble(cfg)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}

	gen := &Generator{ClusterByType: true, IncludeParameters: true}
	first, err := gen.GenerateString(tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := gen.GenerateString(tmpl)
	if first != second {
		t.Error("expected identical output for the same template")
	}
	if !strings.Contains(first, component.MemoryReservationAlarmHigh) {
		t.Error("expected alarm node")
	}
}

func TestDependencies(t *testing.T) {
	edges := dependencies(testTemplate())

	want := map[string]bool{
		"AutoScaleGroup->InstanceProfile": false,
		"EksCluster->EnvironmentName":     false,
		"EksCluster->Role":                true,
		"InstanceProfile->Role":           false,
		"ScaleUpPolicy->AutoScaleGroup":   false,
	}
	if len(edges) != len(want) {
		t.Fatalf("expected %d edges, got %d: %v", len(want), len(edges), edges)
	}
	for _, e := range edges {
		getAtt, ok := want[e.from+"->"+e.to]
		if !ok {
			t.Errorf("unexpected edge %s->%s", e.from, e.to)
			continue
		}
		if getAtt != e.getAtt {
			t.Errorf("edge %s->%s: getAtt = %v, want %v", e.from, e.to, e.getAtt, getAtt)
		}
	}
}

func floatPtr(f float64) *float64 { return &f }
