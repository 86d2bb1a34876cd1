package directory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "male"
	GenderFemale = "female"
)

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_roles_name"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Team struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name string    `gorm:"type:varchar(100);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Employee struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name   string    `gorm:"type:varchar(150);not null"`
	Email  string    `gorm:"type:varchar(150);not null;uniqueIndex:uq_employees_email"`
	Gender *string   `gorm:"type:varchar(10)"`

	RoleID uuid.UUID `gorm:"type:uuid;not null"`
	Role   *Role     `gorm:"foreignKey:RoleID"`
	TeamID uuid.UUID `gorm:"type:uuid;not null"`
	Team   *Team     `gorm:"foreignKey:TeamID"`

	JoiningDate time.Time `gorm:"type:date"`
	IsActive    bool      `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index:idx_employees_deleted_at"`
}
