package schema

// ResourceSchema defines the schema for a resource type.
type ResourceSchema struct {
	Type       string
	Required   []string
	Properties map[string]PropertySchema
}

// PropertySchema defines the schema for a property.
type PropertySchema struct {
	Type          string
	AllowedValues []string
}

var resourceSchemas = map[string]ResourceSchema{
	"AWS::EKS::Cluster": {
		Type:     "AWS::EKS::Cluster",
		Required: []string{"RoleArn", "ResourcesVpcConfig"},
		Properties: map[string]PropertySchema{
			"Name":               {Type: "String"},
			"Version":            {Type: "String"},
			"RoleArn":            {Type: "String"},
			"ResourcesVpcConfig": {Type: "Map"},
			"Tags":               {Type: "List"},
		},
	},
	"AWS::IAM::Role": {
		Type:     "AWS::IAM::Role",
		Required: []string{"AssumeRolePolicyDocument"},
		Properties: map[string]PropertySchema{
			"AssumeRolePolicyDocument": {Type: "Json"},
			"Path":                     {Type: "String"},
			"ManagedPolicyArns":        {Type: "List"},
			"Policies":                 {Type: "List"},
		},
	},
	"AWS::IAM::InstanceProfile": {
		Type:     "AWS::IAM::InstanceProfile",
		Required: []string{"Roles"},
		Properties: map[string]PropertySchema{
			"Path":  {Type: "String"},
			"Roles": {Type: "List"},
		},
	},
	"AWS::EC2::SecurityGroup": {
		Type:     "AWS::EC2::SecurityGroup",
		Required: []string{"GroupDescription"},
		Properties: map[string]PropertySchema{
			"GroupDescription": {Type: "String"},
			"GroupName":        {Type: "String"},
			"VpcId":            {Type: "String"},
			"Tags":             {Type: "List"},
		},
	},
	"AWS::EC2::SecurityGroupIngress": {
		Type:     "AWS::EC2::SecurityGroupIngress",
		Required: []string{"IpProtocol"},
		Properties: map[string]PropertySchema{
			"Description":           {Type: "String"},
			"IpProtocol":            {Type: "String", AllowedValues: []string{"tcp", "udp", "icmp", "icmpv6", "-1"}},
			"FromPort":              {Type: "Integer"},
			"ToPort":                {Type: "Integer"},
			"GroupId":               {Type: "String"},
			"SourceSecurityGroupId": {Type: "String"},
			"CidrIp":                {Type: "String"},
		},
	},
	"AWS::Logs::LogGroup": {
		Type: "AWS::Logs::LogGroup",
		Properties: map[string]PropertySchema{
			"LogGroupName":    {Type: "String"},
			"RetentionInDays": {Type: "Integer"},
		},
	},
	"AWS::AutoScaling::LaunchConfiguration": {
		Type:     "AWS::AutoScaling::LaunchConfiguration",
		Required: []string{"ImageId", "InstanceType"},
		Properties: map[string]PropertySchema{
			"ImageId":                  {Type: "String"},
			"InstanceType":             {Type: "String"},
			"BlockDeviceMappings":      {Type: "List"},
			"AssociatePublicIpAddress": {Type: "Boolean"},
			"IamInstanceProfile":       {Type: "String"},
			"KeyName":                  {Type: "String"},
			"SecurityGroups":           {Type: "List"},
			"SpotPrice":                {Type: "String"},
			"UserData":                 {Type: "String"},
		},
	},
	"AWS::AutoScaling::AutoScalingGroup": {
		Type:     "AWS::AutoScaling::AutoScalingGroup",
		Required: []string{"MinSize", "MaxSize"},
		Properties: map[string]PropertySchema{
			"LaunchConfigurationName": {Type: "String"},
			"HealthCheckGracePeriod":  {Type: "Integer"},
			"MinSize":                 {Type: "String"},
			"MaxSize":                 {Type: "String"},
			"VPCZoneIdentifier":       {Type: "List"},
			"Tags":                    {Type: "List"},
		},
	},
	"AWS::AutoScaling::ScalingPolicy": {
		Type:     "AWS::AutoScaling::ScalingPolicy",
		Required: []string{"AutoScalingGroupName"},
		Properties: map[string]PropertySchema{
			"AdjustmentType":       {Type: "String", AllowedValues: []string{"ChangeInCapacity", "ExactCapacity", "PercentChangeInCapacity"}},
			"AutoScalingGroupName": {Type: "String"},
			"Cooldown":             {Type: "String"},
			"ScalingAdjustment":    {Type: "Integer"},
		},
	},
	"AWS::CloudWatch::Alarm": {
		Type:     "AWS::CloudWatch::Alarm",
		Required: []string{"ComparisonOperator", "EvaluationPeriods"},
		Properties: map[string]PropertySchema{
			"AlarmDescription":  {Type: "String"},
			"MetricName":        {Type: "String"},
			"Namespace":         {Type: "String"},
			"Statistic":         {Type: "String", AllowedValues: []string{"SampleCount", "Average", "Sum", "Minimum", "Maximum"}},
			"Period":            {Type: "Integer"},
			"EvaluationPeriods": {Type: "Integer"},
			"Threshold":         {Type: "Number"},
			"AlarmActions":      {Type: "List"},
			"Dimensions":        {Type: "List"},
			"ComparisonOperator": {Type: "String", AllowedValues: []string{
				"GreaterThanOrEqualToThreshold",
				"GreaterThanThreshold",
				"LessThanThreshold",
				"LessThanOrEqualToThreshold",
			}},
		},
	},
}

// Known reports whether a schema is available for resourceType.
func Known(resourceType string) bool {
	_, ok := resourceSchemas[resourceType]
	return ok
}
