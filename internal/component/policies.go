package component

import (
	"strings"
	"unicode"

	"github.com/lex00/wetwire-eks-go/intrinsics"
	"github.com/lex00/wetwire-eks-go/resources/iam"
)

// policies renders iam_policies as inline allow policies, one statement each.
// The list is present and empty when no policies are configured.
func (a *assembly) policies() []iam.Role_Policy {
	policies := make([]iam.Role_Policy, 0, len(a.cfg.IAMPolicies))
	for _, p := range a.cfg.IAMPolicies {
		resource := p.Resource
		if resource == nil {
			resource = "*"
		}
		policies = append(policies, iam.Role_Policy{
			PolicyName: p.Name,
			PolicyDocument: intrinsics.NewPolicyDocument(intrinsics.PolicyStatement{
				Sid:      statementID(p.Name),
				Effect:   "Allow",
				Action:   p.Action,
				Resource: resource,
			}),
		})
	}
	return policies
}

// statementID keeps the letters and digits of a policy name, the only
// characters IAM accepts in a Sid.
func statementID(name string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return -1
	}, name)
}
