// Package iam provides CloudFormation property types for AWS::IAM resources.
package iam

// Role is AWS::IAM::Role.
type Role struct {
	AssumeRolePolicyDocument any           `json:"AssumeRolePolicyDocument"`
	Path                     any           `json:"Path,omitempty"`
	ManagedPolicyArns        []any         `json:"ManagedPolicyArns,omitempty"`
	Policies                 []Role_Policy `json:"Policies"`
}

// ResourceType returns the CloudFormation type.
func (Role) ResourceType() string { return "AWS::IAM::Role" }

// Role_Policy is an inline policy embedded in a role.
type Role_Policy struct {
	PolicyName     any `json:"PolicyName"`
	PolicyDocument any `json:"PolicyDocument"`
}

// InstanceProfile is AWS::IAM::InstanceProfile.
type InstanceProfile struct {
	Path  any   `json:"Path,omitempty"`
	Roles []any `json:"Roles"`
}

// ResourceType returns the CloudFormation type.
func (InstanceProfile) ResourceType() string { return "AWS::IAM::InstanceProfile" }
