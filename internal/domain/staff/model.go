package staff

// StaffRole maps to the staff_roles table.
type StaffRole struct {
	ID      int    `db:"id" json:"id"`
	Label   string `db:"label" json:"label"`
	Enabled bool   `db:"enabled" json:"enabled"`
}

// Staff maps to the staff table. Role is resolved on read.
type Staff struct {
	ID       int        `db:"id" json:"id"`
	Username string     `db:"username" json:"username"`
	Name     string     `db:"name" json:"name"`
	RoleID   int        `db:"role_id" json:"role_id"`
	Role     *StaffRole `db:"-" json:"role,omitempty"`
	Enabled  bool       `db:"enabled" json:"enabled"`
}

// Page is the data behind the staff administration page.
type Page struct {
	Staff []*Staff     `json:"staff"`
	Roles []*StaffRole `json:"staff-roles"`
}
