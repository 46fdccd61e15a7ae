// Package eks provides CloudFormation property types for AWS::EKS resources.
package eks

// Cluster is AWS::EKS::Cluster.
type Cluster struct {
	Name               any                          `json:"Name,omitempty"`
	Version            any                          `json:"Version,omitempty"`
	RoleArn            any                          `json:"RoleArn,omitempty"`
	ResourcesVpcConfig *Cluster_ResourcesVpcConfig `json:"ResourcesVpcConfig,omitempty"`
	Tags               []any                        `json:"Tags,omitempty"`
}

// ResourceType returns the CloudFormation type.
func (Cluster) ResourceType() string { return "AWS::EKS::Cluster" }

// Cluster_ResourcesVpcConfig is the VPC placement of the control plane.
type Cluster_ResourcesVpcConfig struct {
	SubnetIds             []any `json:"SubnetIds"`
	SecurityGroupIds      []any `json:"SecurityGroupIds,omitempty"`
	EndpointPublicAccess  *bool `json:"EndpointPublicAccess,omitempty"`
	EndpointPrivateAccess *bool `json:"EndpointPrivateAccess,omitempty"`
}
