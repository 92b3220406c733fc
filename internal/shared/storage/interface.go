// Package storage 定义持久化存储层抽象接口
//
// 设计原则：依赖倒置 (DIP)
//   - 调用方只依赖接口，不知道具体实现
//   - 具体实现在子包中：mongostore/
//   - 初始化时通过依赖注入传入实现
package storage

import (
	"context"

	"notes-admin/internal/shared/model"
)

// UserStore 用户存储接口
//
// 按 username 的查找用于写前唯一性检查，文档不存在时返回 (nil, nil)。
type UserStore interface {
	ListUsers(ctx context.Context) ([]*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	SaveUser(ctx context.Context, user *model.User) error
	DeleteUser(ctx context.Context, id string) error
}

// NoteStore 笔记存储接口
type NoteStore interface {
	CreateNote(ctx context.Context, note *model.Note) error
	ListNotesByUser(ctx context.Context, userID string) ([]*model.Note, error)
	// UserHasNotes 判断是否存在引用该用户的笔记（存在性检查，非计数）
	UserHasNotes(ctx context.Context, userID string) (bool, error)
}

// PersistentStore 持久化存储接口
type PersistentStore interface {
	UserStore
	NoteStore

	Close() error
}
