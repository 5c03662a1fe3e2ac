// file: model/role.go

package model

// Role is a closed enumeration of organization roles. Authorization is a
// flat numeric-rank comparison, not a permission graph: OWNER > ADMIN > MEMBER.
type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

var roleRank = map[Role]int{
	RoleOwner:  3,
	RoleAdmin:  2,
	RoleMember: 1,
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// HasMinRole reports whether actual is at least as privileged as minimum.
// Unknown roles rank as zero and therefore never pass.
func HasMinRole(actual, minimum Role) bool {
	return roleRank[actual] >= roleRank[minimum] && roleRank[actual] > 0
}
