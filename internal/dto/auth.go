package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登录成功响应
type LoginResponse struct {
	Token      string           `json:"token"`
	ExpiresIn  int              `json:"expires_in"` // Access Token 有效期（秒）
	Instructor InstructorSesion `json:"instructor"`
}

// InstructorSesion 当前登录讲师信息（含权限列表）
type InstructorSesion struct {
	ID           uint     `json:"id"`
	Nombre       string   `json:"nombre"`
	Email        string   `json:"email"`
	Cedula       string   `json:"cedula"`
	Rol          string   `json:"rol"`
	Permisos     []string `json:"permisos"`
	PrimerAcceso bool     `json:"primer_acceso"`
}
