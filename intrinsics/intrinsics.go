// Package intrinsics provides CloudFormation intrinsic functions.
//
// This package re-exports the core intrinsic types from cloudformation-schema-go
// and adds helpers for the conditional property patterns the EKS component uses.
//
// Core intrinsic functions:
//
//	Ref{"EksCluster"} → {"Ref": "EksCluster"}
//	Sub{"${EnvironmentName}-eks"} → {"Fn::Sub": "${EnvironmentName}-eks"}
//	Join{"", []any{"a", Ref{"B"}}} → {"Fn::Join": ["", ["a", {"Ref": "B"}]]}
package intrinsics

import (
	"github.com/lex00/cloudformation-schema-go/intrinsics"
)

// Re-export core intrinsic types from shared package.
type (
	// Ref represents a CloudFormation Ref intrinsic function.
	Ref = intrinsics.Ref

	// GetAtt represents a CloudFormation Fn::GetAtt intrinsic function.
	GetAtt = intrinsics.GetAtt

	// Sub represents a CloudFormation Fn::Sub intrinsic function.
	Sub = intrinsics.Sub

	// Join represents a CloudFormation Fn::Join intrinsic function.
	Join = intrinsics.Join

	// If represents a CloudFormation Fn::If intrinsic function.
	If = intrinsics.If

	// Equals represents a CloudFormation Fn::Equals condition function.
	Equals = intrinsics.Equals

	// Not represents a CloudFormation Fn::Not condition function.
	Not = intrinsics.Not

	// Base64 represents a CloudFormation Fn::Base64 intrinsic function.
	Base64 = intrinsics.Base64
)

// R returns a Ref to a resource, parameter or pseudo-parameter.
func R(logicalName string) Ref {
	return Ref{LogicalName: logicalName}
}

// Att returns a GetAtt for the given resource attribute.
func Att(logicalName, attribute string) GetAtt {
	return GetAtt{LogicalName: logicalName, Attribute: attribute}
}

// IfSet returns value when condition holds and removes the property otherwise.
//
//	IfSet("SpotPriceSet", R("SpotPrice"))
//	→ {"Fn::If": ["SpotPriceSet", {"Ref": "SpotPrice"}, {"Ref": "AWS::NoValue"}]}
func IfSet(condition string, value any) If {
	return If{Condition: condition, ValueIfTrue: value, ValueIfFalse: AWS_NO_VALUE}
}

// NotEquals builds Fn::Not[Fn::Equals[a, b]].
func NotEquals(a, b any) Not {
	return Not{Condition: Equals{Value1: a, Value2: b}}
}

// Concat joins fragments with an empty delimiter.
func Concat(fragments []any) Join {
	return Join{Delimiter: "", Values: fragments}
}
