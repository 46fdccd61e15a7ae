package component

import (
	"fmt"

	"github.com/lex00/wetwire-eks-go/intrinsics"
)

// addOutputs exports the cluster and its security group as
// ${EnvironmentName}-<component_name>-<output>.
func (a *assembly) addOutputs() {
	outputs := []struct {
		name  string
		value any
	}{
		{"EksCluster", intrinsics.R(EksCluster)},
		{"EksClusterArn", intrinsics.Att(EksCluster, "Arn")},
		{"EksSecurityGroup", intrinsics.R(SecurityGroupEks)},
	}

	for _, out := range outputs {
		a.b.AddOutput(out.name, "", out.value, a.exportName(out.name))
	}
}

func (a *assembly) exportName(output string) intrinsics.Sub {
	return intrinsics.Sub{String: fmt.Sprintf("${%s}-%s-%s", EnvironmentName, a.cfg.ComponentName, output)}
}
