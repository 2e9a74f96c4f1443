package errcode

import "errors"

// 错误分类：
// - Validation：请求缺少必填字段或数据格式不合法
// - NotFound：记录不存在，或不属于当前用户 / 未公开
// - Provider：AI 或图片服务调用失败、返回内容无法解析
var (
	Validation = errors.New("validation failed")
	NotFound   = errors.New("not found")
	Provider   = errors.New("provider failure")
)

// Error 携带面向客户端的消息，并通过 Unwrap 暴露分类与底层原因。
type Error struct {
	kind  error
	msg   string
	cause error
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause == nil {
		return []error{e.kind}
	}
	return []error{e.kind, e.cause}
}

// Cause returns the underlying error, or nil.
func (e *Error) Cause() error {
	return e.cause
}

// New 构造指定分类的错误。
func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap 保留底层错误，便于日志与 errors.As 追溯。
func Wrap(kind error, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}
