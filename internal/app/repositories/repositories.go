package repositories

import (
	"strings"

	"github.com/monchobi/artschool/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	ClassRepository      *ClassRepository
	EnrollmentRepository *EnrollmentRepository
	PaymentRepository    *PaymentRepository
	UserRepository       *UserRepository
}

// NewRepositories initializes all repositories
func NewRepositories(pg *db.PostgresDB) *Repositories {
	return &Repositories{
		ClassRepository:      NewClassRepository(pg),
		EnrollmentRepository: NewEnrollmentRepository(pg),
		PaymentRepository:    NewPaymentRepository(pg),
		UserRepository:       NewUserRepository(pg),
	}
}

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}
