// Package domain 用户上下文的领域模型
package domain

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

// UserRole 用户角色
type UserRole string

const (
	RoleCustomer UserRole = "CUSTOMER"
	RoleAdmin    UserRole = "ADMIN"
)

// User 用户实体
// 本仓库只负责解析用户身份，注册/登录等由外部系统承担
type User struct {
	gorm.Model
	Username string   `gorm:"column:username;type:varchar(64);uniqueIndex;not null" json:"username"`
	Email    string   `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName string   `gorm:"column:full_name;type:varchar(255)" json:"full_name"`
	Role     UserRole `gorm:"column:role;type:varchar(20);default:'CUSTOMER';not null" json:"role"`
	Active   bool     `gorm:"column:active;default:true" json:"active"`
}

func (User) TableName() string { return "users" }

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// UserRepository 用户仓储接口
type UserRepository interface {
	// GetByUsername 根据用户名获取用户
	GetByUsername(ctx context.Context, username string) (*User, error)
	// GetByID 根据ID获取用户
	GetByID(ctx context.Context, id uint) (*User, error)
	// Save 保存用户
	Save(ctx context.Context, user *User) error
}
