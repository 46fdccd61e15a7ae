// Package cloudwatch provides CloudFormation property types for AWS::CloudWatch resources.
package cloudwatch

// Comparison operators used by threshold alarms.
const (
	GreaterThanThreshold = "GreaterThanThreshold"
	LessThanThreshold    = "LessThanThreshold"
)

// Alarm is AWS::CloudWatch::Alarm.
type Alarm struct {
	AlarmDescription   any               `json:"AlarmDescription,omitempty"`
	MetricName         any               `json:"MetricName,omitempty"`
	Namespace          any               `json:"Namespace,omitempty"`
	Statistic          any               `json:"Statistic,omitempty"`
	Period             *int              `json:"Period,omitempty"`
	EvaluationPeriods  *int              `json:"EvaluationPeriods"`
	Threshold          *float64          `json:"Threshold,omitempty"`
	AlarmActions       []any             `json:"AlarmActions,omitempty"`
	Dimensions         []Alarm_Dimension `json:"Dimensions,omitempty"`
	ComparisonOperator any               `json:"ComparisonOperator"`
}

// ResourceType returns the CloudFormation type.
func (Alarm) ResourceType() string { return "AWS::CloudWatch::Alarm" }

// Alarm_Dimension narrows a metric to one value.
type Alarm_Dimension struct {
	Name  string `json:"Name"`
	Value any    `json:"Value"`
}
