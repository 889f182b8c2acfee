package models

import "slices"

// Participant roles. New registrations always start as citizens; other roles
// are assigned by out-of-band administration.
const (
	RoleCitizen      = "citizen"
	RoleEntrepreneur = "entrepreneur"
	RoleCreator      = "creator"
	RoleContributor  = "contributor"
	RoleEvaluator    = "evaluator"
	RolePartner      = "partner"
)

var roles = []string{
	RoleCitizen,
	RoleEntrepreneur,
	RoleCreator,
	RoleContributor,
	RoleEvaluator,
	RolePartner,
}

// ValidRole reports whether the role name is one of the known roles.
func ValidRole(role string) bool {
	return slices.Contains(roles, role)
}
