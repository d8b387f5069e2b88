package models

// Roles carried in the auth token. Identity provisioning is handled by
// an external auth service; this backend only consumes the claims.
const (
	RoleCustomer   = "customer"
	RoleSalonOwner = "salon_owner"
)

// Identity is the authenticated caller, injected by the auth middleware.
type Identity struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func (i Identity) IsOwner() bool {
	return i.Role == RoleSalonOwner
}
