package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	SchoolRepository     *SchoolRepository
	AdmissionRepository  *AdmissionRepository
	StudentRepository    *StudentRepository
	GuardianRepository   *GuardianRepository
	AttendanceRepository *AttendanceRepository
	BehaviorRepository   *BehaviorRepository
	InvoiceRepository    *InvoiceRepository
	UserRepository       *UserRepository
	TokenRepository      *TokenRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		SchoolRepository:     NewSchoolRepository(db),
		AdmissionRepository:  NewAdmissionRepository(db),
		StudentRepository:    NewStudentRepository(db),
		GuardianRepository:   NewGuardianRepository(db),
		AttendanceRepository: NewAttendanceRepository(db),
		BehaviorRepository:   NewBehaviorRepository(db),
		InvoiceRepository:    NewInvoiceRepository(db),
		UserRepository:       NewUserRepository(db),
		TokenRepository:      NewTokenRepository(db),
	}
}
