package constants

// 通用错误消息
const (
	// 认证相关错误
	ErrUnauthorized           = "未授权，请先登录"
	ErrInvalidToken           = "无效的Token"
	ErrInsufficientPermission = "权限不足"
	ErrBlacklisted            = "您的账号已被封禁，禁止访问"
	ErrAuthFailed             = "用户不存在或认证失败"

	// 参数相关错误
	ErrInvalidParams       = "参数错误"
	ErrInvalidRequest      = "无效请求格式"
	ErrInvalidAnnouncement = "无效的公告ID"
	ErrUnknownField        = "包含不允许的字段"

	// 资源相关错误
	ErrNotFound = "资源不存在"
	ErrConflict = "资源冲突"

	// 系统错误
	ErrInternalServer = "服务器内部错误"
	ErrUpstream       = "存储或第三方服务暂不可用"
)

// 成功消息
const (
	SuccessLogin    = "登录成功"
	SuccessRegister = "注册成功"
	SuccessCreate   = "创建成功"
	SuccessUpdate   = "更新成功"
	SuccessDelete   = "删除成功"
	SuccessGet      = "获取成功"
	SuccessApprove  = "审核通过"
	SuccessReject   = "已拒绝"
)
