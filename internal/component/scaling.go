package component

import (
	"fmt"
	"strconv"

	"github.com/lex00/wetwire-eks-go/internal/template"
	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/resources/autoscaling"
	"github.com/lex00/wetwire-eks-go/resources/cloudwatch"
)

const (
	alarmNamespace         = "AWS/EKS"
	alarmStatistic         = "Maximum"
	alarmPeriod            = 60
	alarmEvaluationPeriods = 2
	scalingCooldown        = "300"
)

type alarmSpec struct {
	name        string
	metric      string
	threshold   *float64
	description string
	operator    string
	policy      string
}

// addScaling emits the reservation alarms and scaling policies. Nothing is
// emitted without eks_autoscale; every emitted resource is guarded by
// IsScalingEnabled.
func (a *assembly) addScaling() {
	as := a.cfg.Autoscale
	if as == nil {
		a.log.Debug().Msg("eks_autoscale not set, skipping scaling resources")
		return
	}

	var alarms []alarmSpec
	if as.HasMemoryAlarms() {
		alarms = append(alarms,
			alarmSpec{
				name:        MemoryReservationAlarmHigh,
				metric:      "MemoryReservation",
				threshold:   as.MemoryHigh,
				description: fmt.Sprintf("Scale-up if MemoryReservation > %s%% for 2 minutes", formatThreshold(as.MemoryHigh)),
				operator:    cloudwatch.GreaterThanThreshold,
				policy:      ScaleUpPolicy,
			},
			alarmSpec{
				name:        MemoryReservationAlarmLow,
				metric:      "MemoryReservation",
				threshold:   as.MemoryLow,
				description: fmt.Sprintf("Scale-down if MemoryReservation < %s%%", formatThreshold(as.MemoryLow)),
				operator:    cloudwatch.LessThanThreshold,
				policy:      ScaleDownPolicy,
			},
		)
	}
	if as.HasCPUAlarms() {
		alarms = append(alarms,
			alarmSpec{
				name:        CPUReservationAlarmHigh,
				metric:      "CPUReservation",
				threshold:   as.CPUHigh,
				description: fmt.Sprintf("Scale-up if CPUReservation > %s%%", formatThreshold(as.CPUHigh)),
				operator:    cloudwatch.GreaterThanThreshold,
				policy:      ScaleUpPolicy,
			},
			alarmSpec{
				name:        CPUReservationAlarmLow,
				metric:      "CPUReservation",
				threshold:   as.CPULow,
				description: fmt.Sprintf("Scale-down if CPUReservation < %s%%", formatThreshold(as.CPULow)),
				operator:    cloudwatch.LessThanThreshold,
				policy:      ScaleDownPolicy,
			},
		)
	}

	a.log.Debug().
		Bool("memory", as.HasMemoryAlarms()).
		Bool("cpu", as.HasCPUAlarms()).
		Msg("adding scaling resources")

	for _, spec := range alarms {
		a.b.AddResource(spec.name, &cloudwatch.Alarm{
			AlarmDescription:   spec.description,
			MetricName:         spec.metric,
			Namespace:          alarmNamespace,
			Statistic:          alarmStatistic,
			Period:             intPtr(alarmPeriod),
			EvaluationPeriods:  intPtr(alarmEvaluationPeriods),
			Threshold:          spec.threshold,
			AlarmActions:       []any{intrinsics.R(spec.policy)},
			Dimensions:         []cloudwatch.Alarm_Dimension{{Name: "ClusterName", Value: intrinsics.R(EksCluster)}},
			ComparisonOperator: spec.operator,
		}, template.WithCondition(IsScalingEnabled))
	}

	a.b.AddResource(ScaleUpPolicy, scalingPolicy(as.ScaleUpAdjustment), template.WithCondition(IsScalingEnabled))
	a.b.AddResource(ScaleDownPolicy, scalingPolicy(as.ScaleDownAdjustment), template.WithCondition(IsScalingEnabled))
}

func scalingPolicy(adjustment *int) *autoscaling.ScalingPolicy {
	return &autoscaling.ScalingPolicy{
		AdjustmentType:       "ChangeInCapacity",
		AutoScalingGroupName: intrinsics.R(AutoScaleGroup),
		Cooldown:             scalingCooldown,
		ScalingAdjustment:    adjustment,
	}
}

// formatThreshold renders a threshold for alarm descriptions; unset is empty.
func formatThreshold(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
