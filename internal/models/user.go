// internal/models/user.go
package models

import (
	"github.com/javajoker/fashion-storefront/internal/utils"
)

type User struct {
	BaseModel
	Name         string  `json:"name" gorm:"size:255;not null"`
	Email        string  `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string  `json:"-" gorm:"size:255;not null"`
	Phone        *string `json:"phone" gorm:"size:50"`
	Role         Role    `json:"role" gorm:"type:varchar(20);default:'customer';not null;index"`
}

func (u *User) SetPassword(password string) error {
	hash, err := utils.HashSecret(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return utils.VerifySecret(password, u.PasswordHash)
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
