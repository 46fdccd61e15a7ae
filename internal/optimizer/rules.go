package optimizer

import (
	"strings"

	wetwire "github.com/lex00/wetwire-eks-go"
)

var rules = []Rule{
	{
		ID:       "OPT-EKS-001",
		Category: "security",
		Type:     "AWS::EKS::Cluster",
		Check: func(_ *wetwire.Template, _ string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			vpc, _ := res.Properties["ResourcesVpcConfig"].(map[string]any)
			if public, ok := vpc["EndpointPublicAccess"].(bool); ok && !public {
				return nil
			}
			return &wetwire.OptimizeSuggestion{
				Severity:    "medium",
				Title:       "Cluster API endpoint is reachable from the internet",
				Description: "EKS enables the public API endpoint unless EndpointPublicAccess is set to false.",
				Suggestion:  "Set EndpointPublicAccess to false and EndpointPrivateAccess to true, or restrict PublicAccessCidrs.",
			}
		},
	},
	{
		ID:       "OPT-IAM-001",
		Category: "security",
		Type:     "AWS::IAM::Role",
		Check: func(_ *wetwire.Template, _ string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			policies, _ := res.Properties["Policies"].([]any)
			for _, p := range policies {
				policy, _ := p.(map[string]any)
				doc, _ := policy["PolicyDocument"].(map[string]any)
				statements, _ := doc["Statement"].([]any)
				for _, s := range statements {
					stmt, _ := s.(map[string]any)
					if hasWildcardAction(stmt["Action"]) && isAnyResource(stmt["Resource"]) {
						name, _ := policy["PolicyName"].(string)
						return &wetwire.OptimizeSuggestion{
							Severity:    "high",
							Title:       "Inline policy grants wildcard actions on all resources",
							Description: "Policy " + name + " allows service-wide actions on every resource.",
							Suggestion:  "List the actions the worker nodes need and scope Resource to specific ARNs.",
						}
					}
				}
			}
			return nil
		},
	},
	{
		ID:       "OPT-ASG-001",
		Category: "reliability",
		Type:     "AWS::AutoScaling::AutoScalingGroup",
		Check: func(_ *wetwire.Template, _ string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			if len(res.UpdatePolicy) > 0 {
				return nil
			}
			return &wetwire.OptimizeSuggestion{
				Severity:    "medium",
				Title:       "Auto scaling group has no update policy",
				Description: "Launch configuration changes are not rolled out to running instances.",
				Suggestion:  "Set asg_update_policy, e.g. AutoScalingRollingUpdate with MinInstancesInService.",
			}
		},
	},
	{
		ID:       "OPT-ASG-002",
		Category: "reliability",
		Type:     "AWS::AutoScaling::AutoScalingGroup",
		Check: func(_ *wetwire.Template, _ string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			zones, _ := res.Properties["VPCZoneIdentifier"].([]any)
			if len(zones) >= 2 {
				return nil
			}
			return &wetwire.OptimizeSuggestion{
				Severity:    "high",
				Title:       "Worker nodes run in a single availability zone",
				Description: "An availability zone outage stops every worker node.",
				Suggestion:  "Raise maximum_availability_zones to at least 2.",
			}
		},
	},
	{
		ID:       "OPT-ASG-003",
		Category: "reliability",
		Type:     "AWS::AutoScaling::AutoScalingGroup",
		Check: func(tmpl *wetwire.Template, name string, _ wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			for _, other := range tmpl.Resources {
				if other.Type != "AWS::AutoScaling::ScalingPolicy" {
					continue
				}
				if ref, ok := other.Properties["AutoScalingGroupName"].(map[string]any); ok && ref["Ref"] == name {
					return nil
				}
			}
			return &wetwire.OptimizeSuggestion{
				Severity:    "low",
				Title:       "Auto scaling group has no scaling policies",
				Description: "The fleet size stays fixed regardless of cluster reservation.",
				Suggestion:  "Add eks_autoscale with memory or CPU reservation thresholds.",
			}
		},
	},
	{
		ID:       "OPT-LC-001",
		Category: "cost",
		Type:     "AWS::AutoScaling::LaunchConfiguration",
		Check: func(tmpl *wetwire.Template, _ string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			if !spotDisabled(tmpl, res.Properties["SpotPrice"]) {
				return nil
			}
			return &wetwire.OptimizeSuggestion{
				Severity:    "low",
				Title:       "Worker nodes launch on-demand",
				Description: "Spot instances are usually much cheaper for interruptible Kubernetes workloads.",
				Suggestion:  "Set spot_price or pass a SpotPrice parameter value.",
			}
		},
	},
	{
		ID:       "OPT-LC-002",
		Category: "performance",
		Type:     "AWS::AutoScaling::LaunchConfiguration",
		Check: func(_ *wetwire.Template, _ string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			mappings, _ := res.Properties["BlockDeviceMappings"].([]any)
			for _, m := range mappings {
				mapping, _ := m.(map[string]any)
				ebs, ok := mapping["Ebs"].(map[string]any)
				if !ok {
					continue
				}
				if vt, _ := ebs["VolumeType"].(string); vt == "" || vt == "gp2" {
					return &wetwire.OptimizeSuggestion{
						Severity:    "low",
						Title:       "Root volume uses gp2",
						Description: "gp3 volumes give a higher baseline throughput at a lower price.",
						Suggestion:  "Use VolumeType gp3 for the worker root volume.",
					}
				}
			}
			return nil
		},
	},
	{
		ID:       "OPT-LOG-001",
		Category: "cost",
		Type:     "AWS::Logs::LogGroup",
		Check: func(_ *wetwire.Template, _ string, res wetwire.ResourceDef) *wetwire.OptimizeSuggestion {
			days, ok := res.Properties["RetentionInDays"].(float64)
			if ok && days <= 365 {
				return nil
			}
			s := &wetwire.OptimizeSuggestion{
				Severity:    "medium",
				Title:       "Log group keeps logs forever",
				Description: "Without RetentionInDays CloudWatch stores node logs indefinitely.",
				Suggestion:  "Set log_group_retention to the shortest period you need.",
			}
			if ok {
				s.Severity = "low"
				s.Title = "Log group retention is longer than a year"
				s.Description = "Long retention grows CloudWatch storage costs."
			}
			return s
		},
	},
}

func hasWildcardAction(action any) bool {
	switch a := action.(type) {
	case string:
		return a == "*" || strings.HasSuffix(a, ":*")
	case []any:
		for _, item := range a {
			if hasWildcardAction(item) {
				return true
			}
		}
	}
	return false
}

func isAnyResource(resource any) bool {
	switch r := resource.(type) {
	case string:
		return r == "*"
	case []any:
		for _, item := range r {
			if isAnyResource(item) {
				return true
			}
		}
	}
	return false
}

// spotDisabled reports whether SpotPrice is unset or guarded by a parameter
// whose default is empty.
func spotDisabled(tmpl *wetwire.Template, spot any) bool {
	if spot == nil {
		return true
	}
	m, ok := spot.(map[string]any)
	if !ok {
		return false
	}
	if args, ok := m["Fn::If"].([]any); ok && len(args) == 3 {
		return spotDisabled(tmpl, args[1])
	}
	if name, ok := m["Ref"].(string); ok {
		param, declared := tmpl.Parameters[name]
		return declared && param.Default != nil && *param.Default == ""
	}
	return false
}
