package service

import "errors"

var (
	// ErrNotFound 引用的账本/通知不存在
	ErrNotFound = errors.New("not found")
	// ErrForbidden 当前用户没有执行该操作的角色
	ErrForbidden = errors.New("forbidden")
)

// ValidationError 成员列表违反账本不变量（owner/leader 必须是成员）等校验失败
// Message 直接展示给调用方
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErr(msg string) error {
	return &ValidationError{Message: msg}
}
