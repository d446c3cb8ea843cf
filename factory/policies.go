package factory

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/ecosys/selection"
)

// policyBuilder builds a stateless policy that takes no data.
func policyBuilder(p selection.Policy, desc string) Builder[selection.Policy] {
	return builder[selection.Policy]{
		tag:     p.Type(),
		desc:    desc,
		example: map[string]any{},
		create: func(data *yaml.Node) (selection.Policy, error) {
			if !isEmpty(data) {
				return nil, fmt.Errorf("%s takes no data: %w", p.Type(), ErrMalformedDescription)
			}
			return p, nil
		},
	}
}

// NewPolicyFactory returns a factory for the first, closest and youngest policies.
func NewPolicyFactory() *Factory[selection.Policy] {
	return New(
		policyBuilder(selection.First{}, "Select the first animal found"),
		policyBuilder(selection.Closest{}, "Select the closest animal"),
		policyBuilder(selection.Youngest{}, "Select the youngest animal"),
	)
}
