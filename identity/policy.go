package identity

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"sync"

	"github.com/open-policy-agent/opa/v1/rego"
	"github.com/zpatrick/rbac"
	"gopkg.in/yaml.v3"

	"go.hackfix.me/todo/db/models"
)

// PolicyCanPurge is the built-in policy required to purge all todo lists.
const PolicyCanPurge = "CanPurge"

// Policy decides whether a user satisfies a named authorization requirement.
type Policy interface {
	Allow(ctx context.Context, user *models.User) (bool, error)
}

// PermissionPolicy is satisfied by users with a role that grants Action on
// Target. Role permissions may use glob patterns.
type PermissionPolicy struct {
	Action string
	Target string
}

var _ Policy = PermissionPolicy{}

// Allow implements Policy.
func (p PermissionPolicy) Allow(_ context.Context, user *models.User) (bool, error) {
	for _, role := range user.Roles {
		perms := make([]rbac.Permission, 0, len(role.Permissions))
		for _, perm := range role.Permissions {
			perms = append(perms, rbac.NewGlobPermission(perm.Action, perm.Target))
		}

		r := rbac.Role{RoleID: role.Name, Permissions: perms}
		ok, err := r.Can(p.Action, p.Target)
		if err != nil {
			return false, fmt.Errorf("failed checking permission %s:%s: %w", p.Action, p.Target, err)
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

// RegoPolicy is satisfied when its Rego query evaluates to true. The query
// input has the user ID, name and role names under "user".
type RegoPolicy struct {
	query rego.PreparedEvalQuery
}

var _ Policy = (*RegoPolicy)(nil)

// NewRegoPolicy compiles the Rego module src and prepares query for
// evaluation.
func NewRegoPolicy(ctx context.Context, name, src, query string) (*RegoPolicy, error) {
	prepared, err := rego.New(
		rego.Query(query),
		rego.Module(name+".rego", src),
	).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed compiling policy '%s': %w", name, err)
	}

	return &RegoPolicy{query: prepared}, nil
}

// Allow implements Policy.
func (p *RegoPolicy) Allow(ctx context.Context, user *models.User) (bool, error) {
	input := map[string]any{
		"user": map[string]any{
			"id":    user.ID,
			"name":  user.Name,
			"roles": models.RoleNames(user.Roles),
		},
	}

	rs, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, fmt.Errorf("failed evaluating policy: %w", err)
	}

	return rs.Allowed(), nil
}

// UnknownPolicyError is returned when a request requires a policy that isn't
// defined.
type UnknownPolicyError struct {
	Name string
}

// Error returns a string representation of the error.
func (e UnknownPolicyError) Error() string {
	return fmt.Sprintf("unknown authorization policy '%s'", e.Name)
}

// PolicySet is a named collection of policies that can be reloaded while in
// use. Built-in policies can be overridden by loaded ones.
type PolicySet struct {
	mu       sync.RWMutex
	builtin  map[string]Policy
	policies map[string]Policy
}

// NewPolicySet returns a set with the built-in policies.
func NewPolicySet() *PolicySet {
	builtin := map[string]Policy{
		PolicyCanPurge: PermissionPolicy{Action: "purge", Target: "todolists"},
	}

	return &PolicySet{builtin: builtin, policies: maps.Clone(builtin)}
}

// Evaluate checks the named policy for the user.
func (s *PolicySet) Evaluate(ctx context.Context, name string, user *models.User) (bool, error) {
	s.mu.RLock()
	policy, ok := s.policies[name]
	s.mu.RUnlock()
	if !ok {
		return false, UnknownPolicyError{Name: name}
	}

	return policy.Allow(ctx, user)
}

// Names returns the sorted names of all policies.
func (s *PolicySet) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.policies))
	for name := range s.policies {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

type policyFile struct {
	Policies map[string]policyDef `yaml:"policies"`
}

type policyDef struct {
	Permission *models.Permission `yaml:"permission"`
	Rego       string             `yaml:"rego"`
	Query      string             `yaml:"query"`
}

// Load parses YAML policy definitions and replaces all previously loaded
// policies. The set is left unchanged if any definition is invalid.
//
// Example:
//
//	policies:
//	  CanPurge:
//	    permission: {action: purge, target: todolists}
//	  Weekdays:
//	    query: data.todo.weekdays.allow
//	    rego: |
//	      package todo.weekdays
//	      allow if time.weekday(time.now_ns()) != "Sunday"
func (s *PolicySet) Load(ctx context.Context, data []byte) error {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed parsing policies: %w", err)
	}

	policies := maps.Clone(s.builtin)
	for name, def := range file.Policies {
		switch {
		case def.Permission != nil && def.Rego != "":
			return fmt.Errorf("policy '%s' must define either a permission or a rego module, not both", name)
		case def.Permission != nil:
			if def.Permission.Action == "" || def.Permission.Target == "" {
				return fmt.Errorf("policy '%s' permission requires an action and a target", name)
			}
			policies[name] = PermissionPolicy{
				Action: def.Permission.Action, Target: def.Permission.Target,
			}
		case def.Rego != "":
			if def.Query == "" {
				return fmt.Errorf("policy '%s' rego module requires a query", name)
			}
			p, err := NewRegoPolicy(ctx, name, def.Rego, def.Query)
			if err != nil {
				return err
			}
			policies[name] = p
		default:
			return fmt.Errorf("policy '%s' is empty", name)
		}
	}

	s.mu.Lock()
	s.policies = policies
	s.mu.Unlock()

	return nil
}
