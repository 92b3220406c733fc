// Package model 定义核心数据模型
//
// 所有结构体通过 bson tag 持久化到 MongoDB，通过 json tag 暴露给 HTTP API。
package model

import "time"

// Note 笔记
//
// UserID 是指向所属用户的弱引用：删除用户前必须确认
// 没有任何笔记仍然引用该用户。
type Note struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user" bson:"user"`
	Title     string    `json:"title" bson:"title"`
	Text      string    `json:"text" bson:"text"`
	Completed bool      `json:"completed" bson:"completed"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}
