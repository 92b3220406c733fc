package storage

import "errors"

// 存储层统一错误定义
//
// 调用方通过 errors.Is 判断错误类型，不依赖具体存储实现的错误。
var (
	// ErrNotFound 实体不存在
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate 唯一键冲突（INSERT 重复 ID）
	ErrDuplicate = errors.New("duplicate: entity already exists")

	// ErrUnavailable 存储不可用（连接断开、超时）
	// 请求级别不重试，直接向上传播
	ErrUnavailable = errors.New("storage unavailable")
)
