package dto

// UserListQuery 用户列表查询
type UserListQuery struct {
	PageQuery
	Role   string `form:"role" binding:"omitempty,oneof=pm qa eng"`
	Search string `form:"search"`
}

// UserCreateRequest PM创建用户请求, 创建即已验证
type UserCreateRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,max=100"`
	Role     string `json:"role" binding:"required,oneof=pm qa eng"`
}

// UserUpdateRequest PM更新用户请求, 指针字段缺省表示不修改
type UserUpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Role     *string `json:"role" binding:"omitempty,oneof=pm qa eng"`
	Password *string `json:"password" binding:"omitempty,min=8,max=72"`
}

// QATesterResponse 已验证QA精简信息, 供指派下拉使用
type QATesterResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
