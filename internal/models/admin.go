package models

import "time"

// Role values recognized for admin accounts.
const (
	RoleAdmin    = "admin"
	RoleSubAdmin = "sub-admin"
)

// Permission names. These four strings are the entire capability vocabulary;
// authorization checks never accept anything else.
const (
	PermViewApplications = "viewApplications"
	PermManageAdmins     = "manageAdmins"
	PermManageSMTP       = "manageSmtp"
	PermManageRecipients = "manageRecipients"
)

// Permissions is the fixed capability record attached to every admin account.
type Permissions struct {
	ViewApplications bool `json:"viewApplications"`
	ManageAdmins     bool `json:"manageAdmins"`
	ManageSMTP       bool `json:"manageSmtp"`
	ManageRecipients bool `json:"manageRecipients"`
}

// AllPermissions returns a record with every capability granted.
func AllPermissions() Permissions {
	return Permissions{
		ViewApplications: true,
		ManageAdmins:     true,
		ManageSMTP:       true,
		ManageRecipients: true,
	}
}

// Has reports whether the named capability is set. Unknown names are never
// granted.
func (p Permissions) Has(name string) bool {
	switch name {
	case PermViewApplications:
		return p.ViewApplications
	case PermManageAdmins:
		return p.ManageAdmins
	case PermManageSMTP:
		return p.ManageSMTP
	case PermManageRecipients:
		return p.ManageRecipients
	default:
		return false
	}
}

// AdminAccount represents a staff account able to use the review panel.
// Email is the lookup key in the store.
type AdminAccount struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"passwordHash"`
	Role         string      `json:"role"`
	Permissions  Permissions `json:"permissions"`
	AddedBy      string      `json:"addedBy,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Can reports whether the account holds the named capability. The admin role
// is a superset override: it grants everything regardless of the stored flags.
func (a *AdminAccount) Can(permission string) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.Permissions.Has(permission)
}
