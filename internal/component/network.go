package component

import (
	"fmt"

	"github.com/lex00/wetwire-eks-go/intrinsics"
)

func subnetParameter(az int) string { return fmt.Sprintf("SubnetCompute%d", az) }

func subnetCondition(az int) string { return fmt.Sprintf("SubnetCompute%dSet", az) }

func (a *assembly) addConditions() {
	for az := 0; az < a.cfg.MaximumAvailabilityZones; az++ {
		a.b.AddCondition(subnetCondition(az), intrinsics.NotEquals(intrinsics.R(subnetParameter(az)), "false"))
	}
	a.b.AddCondition(IsScalingEnabled, intrinsics.Equals{Value1: intrinsics.R(EnableScaling), Value2: "true"})
	a.b.AddCondition(SpotPriceSet, intrinsics.NotEquals(intrinsics.R(SpotPrice), ""))
}

// subnets lists one entry per availability zone. Zones whose subnet parameter
// is "false" drop out of the list at deploy time.
func (a *assembly) subnets() []any {
	list := make([]any, 0, a.cfg.MaximumAvailabilityZones)
	for az := 0; az < a.cfg.MaximumAvailabilityZones; az++ {
		list = append(list, intrinsics.IfSet(subnetCondition(az), intrinsics.R(subnetParameter(az))))
	}
	return list
}
