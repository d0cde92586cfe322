package models

// RoleType defines the user role type
type RoleType string

const (
	RoleAdmin RoleType = "ADMIN"
	RoleStaff RoleType = "STAFF"
)

// Fine-grained staff permissions checked on top of roles
const (
	PermAdmissionsDecide  = "admissions:decide"
	PermAdmissionsConvert = "admissions:convert"
)
