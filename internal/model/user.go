package model

import "time"

type UserRole string

const (
	Employee UserRole = "employee"
	Trainer  UserRole = "trainer"
	Manager  UserRole = "manager"
	Admin    UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username  string    `gorm:"size:50;unique;not null" json:"username"` // employee ID, used for login
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('employee','trainer','manager','admin');default:'employee'" json:"role"`
	LastLogin time.Time `gorm:"default:CURRENT_TIMESTAMP(3)" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
