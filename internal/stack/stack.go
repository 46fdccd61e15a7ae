// Package stack checks rendered templates against the CloudFormation API.
package stack

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudformation"
	"github.com/aws/aws-sdk-go/service/cloudformation/cloudformationiface"
	"github.com/rs/zerolog/log"
)

// MaxTemplateBody is the largest template CloudFormation accepts inline.
const MaxTemplateBody = 51200

// ErrTemplateTooLarge is returned for bodies over MaxTemplateBody bytes.
var ErrTemplateTooLarge = errors.New("template body exceeds inline size limit")

// Parameter is a template parameter as reported by CloudFormation.
type Parameter struct {
	Key         string `json:"key"`
	Default     string `json:"default,omitempty"`
	NoEcho      bool   `json:"no_echo,omitempty"`
	Description string `json:"description,omitempty"`
}

// Report is the outcome of a remote template validation.
type Report struct {
	Description        string      `json:"description,omitempty"`
	Parameters         []Parameter `json:"parameters"`
	Capabilities       []string    `json:"capabilities,omitempty"`
	CapabilitiesReason string      `json:"capabilities_reason,omitempty"`
}

// Validator validates templates with the CloudFormation ValidateTemplate API.
type Validator struct {
	client cloudformationiface.CloudFormationAPI
}

// NewValidator wraps a CloudFormation client.
func NewValidator(client cloudformationiface.CloudFormationAPI) *Validator {
	return &Validator{client: client}
}

// NewSession creates an AWS session for region using the shared config and
// credential chain.
func NewSession(region string) (*session.Session, error) {
	config := aws.NewConfig()
	if region != "" {
		config = config.WithRegion(region)
	}
	config = config.WithCredentialsChainVerboseErrors(true)

	opts := session.Options{
		Config:            *config,
		SharedConfigState: session.SharedConfigEnable,
	}
	sess, err := session.NewSessionWithOptions(opts)
	if err != nil {
		return nil, fmt.Errorf("creating AWS session: %w", err)
	}
	return sess, nil
}

// NewDefaultValidator builds a Validator from a fresh session.
func NewDefaultValidator(region string) (*Validator, error) {
	sess, err := NewSession(region)
	if err != nil {
		return nil, err
	}
	return NewValidator(cloudformation.New(sess)), nil
}

// Validate sends body to CloudFormation and reports the declared parameters
// and required capabilities.
func (v *Validator) Validate(ctx context.Context, body []byte) (*Report, error) {
	if len(body) > MaxTemplateBody {
		return nil, fmt.Errorf("%w: %d bytes", ErrTemplateTooLarge, len(body))
	}

	log.Debug().Int("bytes", len(body)).Msg("validating template with CloudFormation")
	out, err := v.client.ValidateTemplateWithContext(ctx, &cloudformation.ValidateTemplateInput{
		TemplateBody: aws.String(string(body)),
	})
	if err != nil {
		return nil, fmt.Errorf("validate template: %w", err)
	}

	report := &Report{
		Description:        aws.StringValue(out.Description),
		CapabilitiesReason: aws.StringValue(out.CapabilitiesReason),
		Capabilities:       aws.StringValueSlice(out.Capabilities),
		Parameters:         make([]Parameter, 0, len(out.Parameters)),
	}
	for _, p := range out.Parameters {
		report.Parameters = append(report.Parameters, Parameter{
			Key:         aws.StringValue(p.ParameterKey),
			Default:     aws.StringValue(p.DefaultValue),
			NoEcho:      aws.BoolValue(p.NoEcho),
			Description: aws.StringValue(p.Description),
		})
	}
	sort.Slice(report.Parameters, func(i, j int) bool {
		return report.Parameters[i].Key < report.Parameters[j].Key
	})
	return report, nil
}

// RequiresIAM reports whether the template needs an IAM capability.
func (r *Report) RequiresIAM() bool {
	for _, c := range r.Capabilities {
		if c == cloudformation.CapabilityCapabilityIam || c == cloudformation.CapabilityCapabilityNamedIam {
			return true
		}
	}
	return false
}
