package errors

import "errors"

// ErrPermissionDenied 跨模块通用的权限错误：
// 博客、纪念册、员工资料等多处"本人或管理员"检查都返回该错误，
// handler 层统一映射为 403
var ErrPermissionDenied = errors.New("you do not have permission to perform this action")
