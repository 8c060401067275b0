package gate

import "github.com/dmitrijs2005/gophgate/internal/server/auth"

type rule struct {
	public bool
	roles  []auth.Role
}

// Policy maps fully-qualified RPC method names to access rules. Methods
// that were never registered are denied.
type Policy struct {
	rules map[string]rule
}

func NewPolicy() *Policy {
	return &Policy{rules: make(map[string]rule)}
}

// Public marks methods that skip both gates.
func (p *Policy) Public(methods ...string) *Policy {
	for _, m := range methods {
		p.rules[m] = rule{public: true}
	}
	return p
}

// Allow requires authentication and one of roles for method.
func (p *Policy) Allow(method string, roles ...auth.Role) *Policy {
	p.rules[method] = rule{roles: append([]auth.Role(nil), roles...)}
	return p
}

// Lookup reports the rule for method; known is false for unregistered ones.
func (p *Policy) Lookup(method string) (public bool, roles []auth.Role, known bool) {
	r, ok := p.rules[method]
	if !ok {
		return false, nil, false
	}
	return r.public, r.roles, true
}
