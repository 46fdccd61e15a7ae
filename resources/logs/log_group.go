// Package logs provides CloudFormation property types for AWS::Logs resources.
package logs

// LogGroup is AWS::Logs::LogGroup.
type LogGroup struct {
	LogGroupName    any  `json:"LogGroupName,omitempty"`
	RetentionInDays *int `json:"RetentionInDays,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (LogGroup) ResourceType() string { return "AWS::Logs::LogGroup" }
