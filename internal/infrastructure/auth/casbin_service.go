package auth

import (
	"strings"

	"github.com/casbin/casbin/v2"
	casbinmodel "github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"github.com/AndrewYakovlev/aso-uni/domain"
)

// routePolicyModel is the RBAC model backing the edge gate's route policy:
// role subjects, keyMatch on paths, regexMatch on methods.
const routePolicyModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch(r.obj, p.obj) && regexMatch(r.act, p.act)
`

type CasbinService struct{ E *casbin.Enforcer }

// NewCasbinService builds the enforcer on top of the shared gorm handle so
// policies live in the same store as the rest of identity state.
func NewCasbinService(db *gorm.DB) (*CasbinService, error) {
	adp, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := casbinmodel.NewModelFromString(routePolicyModel)
	if err != nil {
		return nil, err
	}
	e, err := casbin.NewEnforcer(m, adp)
	if err != nil {
		return nil, err
	}
	if err := e.LoadPolicy(); err != nil {
		return nil, err
	}
	return &CasbinService{E: e}, nil
}

// SeedDefaultPolicies installs the coarse route policy when the store is
// empty: panel paths for managers and admins, profile for every signed-in
// role.
func (s *CasbinService) SeedDefaultPolicies() error {
	policies, err := s.E.GetPolicy()
	if err != nil {
		return err
	}
	if len(policies) > 0 {
		return nil
	}

	s.E.AddPolicy("role_admin", "/panel/*", "(GET|POST|PUT|PATCH|DELETE)")
	s.E.AddPolicy("role_manager", "/panel/*", "(GET|POST|PUT|PATCH|DELETE)")
	s.E.AddPolicy("role_customer", "/profile", "GET")
	s.E.AddGroupingPolicy("role_admin", "role_customer")
	s.E.AddGroupingPolicy("role_manager", "role_customer")
	return s.E.SavePolicy()
}

// RoleSubject maps a domain role to its casbin subject.
func RoleSubject(role domain.UserRole) string {
	return "role_" + strings.ToLower(string(role))
}
