package component

import (
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/resources/autoscaling"
)

// tags merges eks_extra_tags with the fixed tags. Extra tags come first and
// the first tag of each key wins, so an extra tag replaces a fixed one.
func (a *assembly) tags() []autoscaling.AutoScalingGroup_TagProperty {
	var merged []autoscaling.AutoScalingGroup_TagProperty
	seen := make(map[string]bool)

	add := func(key string, value any) {
		if seen[key] {
			a.log.Debug().Str("tag", key).Msg("tag shadowed by extra tag")
			return
		}
		seen[key] = true
		merged = append(merged, autoscaling.AutoScalingGroup_TagProperty{Key: key, Value: value, PropagateAtLaunch: true})
	}

	extra := a.cfg.ExtraTags
	for _, key := range extra.Keys() {
		value, _ := extra.Get(key)
		add(key, value)
	}

	add("Name", intrinsics.Join{Delimiter: "-", Values: []any{intrinsics.R(EnvironmentName), a.cfg.ComponentName, "xx"}})
	add("Environment", intrinsics.R(EnvironmentName))
	add("EnvironmentType", intrinsics.R(EnvironmentType))
	add("Role", "eks")

	return merged
}
