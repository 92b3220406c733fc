package model

import "time"

// User 用户
//
// Roles 为角色标签集合，至少包含一个标签。
// 密码只保存 bcrypt 哈希，绝不通过 JSON 暴露。
type User struct {
	ID           string    `json:"id" bson:"_id"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password_hash"`
	Roles        []string  `json:"roles" bson:"roles"`
	Active       bool      `json:"active" bson:"active"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" bson:"updated_at"`
}

// Valid 校验必填字段
func (u User) Valid() bool {
	return u.Username != "" && u.PasswordHash != "" && len(u.Roles) > 0
}
