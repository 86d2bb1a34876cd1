package authz

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Role names match the role directory; the escalation chain in the approval
// engine uses the same spelling.
const (
	RoleDeveloper = "Developer"
	RoleTeamLead  = "Team Lead"
	RoleManager   = "Manager"
	RoleHR        = "HR"
)

// NewEnforcer builds a casbin enforcer with the static leave-domain policy
// set. Role and permission management has no runtime surface here, so the
// policies live in code rather than a policy table.
func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	if _, err := e.AddGroupingPolicies([][]string{
		{RoleDeveloper, "employee"},
		{RoleTeamLead, "employee"},
		{RoleManager, "employee"},
		{RoleHR, "employee"},
		{RoleTeamLead, "approver"},
		{RoleManager, "approver"},
		{RoleHR, "approver"},
	}); err != nil {
		return nil, err
	}

	if _, err := e.AddPolicies([][]string{
		{"employee", "leave_request", "create"},
		{"employee", "leave_request", "read"},
		{"employee", "leave_request", "cancel"},
		{"employee", "dashboard", "read"},
		{"employee", "leave_type", "read"},
		{"approver", "approval", "read"},
		{"approver", "approval", "resolve"},
		{RoleHR, "leave_type", "manage"},
		{RoleHR, "allocation", "run"},
	}); err != nil {
		return nil, err
	}

	return e, nil
}

// Service wraps the enforcer behind the middleware's Enforcer interface.
type Service struct {
	enforcer *casbin.Enforcer
}

func NewService(enforcer *casbin.Enforcer) *Service {
	return &Service{enforcer: enforcer}
}

func (s *Service) Enforce(role, resource, action string) (bool, error) {
	return s.enforcer.Enforce(role, resource, action)
}
