package domain

// Role is the staff role assigned to a user. Roles form a strict total
// order: cashier < manager < admin. All permission checks compare ranks.
type Role string

const (
	RoleCashier Role = "cashier"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

var roleRanks = map[Role]int{
	RoleCashier: 1,
	RoleManager: 2,
	RoleAdmin:   3,
}

// Rank returns the position of the role in the total order.
// Unknown roles rank 0, below every valid role.
func (r Role) Rank() int {
	return roleRanks[r]
}

func (r Role) IsValid() bool {
	_, ok := roleRanks[r]
	return ok
}

// AtLeast reports whether r ranks at or above other.
func (r Role) AtLeast(other Role) bool {
	return r.Rank() >= other.Rank()
}

// Below reports whether r ranks strictly below other.
func (r Role) Below(other Role) bool {
	return r.Rank() < other.Rank()
}
