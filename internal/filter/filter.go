// Package filter implements address filtering.
package filter

import (
	"net/netip"

	"github.com/pkg/errors"

	"gortc.io/ipsetd/ipset"
)

// Action is possible action that can be applied to address.
type Action byte

var actionToStr = map[Action]string{
	Pass:  "pass",
	Allow: "allow",
	Deny:  "deny",
}

func (a Action) String() string {
	return actionToStr[a]
}

// Possible action list.
const (
	Pass Action = iota
	Allow
	Deny
)

type setRule struct {
	action Action
	set    *ipset.Set
}

func (r setRule) Action(addr netip.Addr) Action {
	if r.set.Contains(addr) {
		return r.action
	}
	return Pass
}

// AllowNet allows any address from subnets.
func AllowNet(subnets ...string) (Rule, error) {
	return StaticNetRule(Allow, subnets...)
}

// ForbidNet blocks any address from subnets.
func ForbidNet(subnets ...string) (Rule, error) {
	return StaticNetRule(Deny, subnets...)
}

// StaticNetRule returns static rule for provided subnets that will apply
// action to any address from their union.
func StaticNetRule(action Action, subnets ...string) (Rule, error) {
	networks := make([]netip.Prefix, 0, len(subnets))
	for _, subnet := range subnets {
		p, err := netip.ParsePrefix(subnet)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to parse subnet %q", subnet)
		}
		if !p.Addr().Is4() {
			return nil, errors.Errorf("subnet %q is not IPv4", subnet)
		}
		networks = append(networks, p)
	}
	return setRule{action: action, set: ipset.New(networks)}, nil
}

type allowAll struct{}

func (allowAll) Action(addr netip.Addr) Action { return Allow }

// AllowAll is Rule that always returns Allow.
var AllowAll Rule = allowAll{}

// Rule represents filtering rule.
type Rule interface {
	Action(addr netip.Addr) Action
}

// List is list of rules with default action.
type List struct {
	action Action
	rules  []Rule
}

// Action implements Rule.
//
// Returns first matched rule from list or default action if none found.
// Matched is rule that returned Allow or Deny action (not "Pass").
func (f *List) Action(addr netip.Addr) Action {
	for i := range f.rules {
		a := f.rules[i].Action(addr)
		if a == Pass {
			continue
		}
		return a
	}
	return f.action
}

// NewFilter initializes and returns new List with provided default action
// and rule list.
func NewFilter(action Action, rules ...Rule) *List { return &List{rules: rules, action: action} }
