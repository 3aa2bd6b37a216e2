package dto

// ── 讲师模块 DTO ──

// CreateInstructorRequest 创建讲师请求
type CreateInstructorRequest struct {
	Cedula     string `json:"cedula"     binding:"required,max=30"`
	Nombre     string `json:"nombre"     binding:"required,max=255"`
	Email      string `json:"email"      binding:"required"`
	Contrasena string `json:"contrasena" binding:"required,min=6"`
	IDRol      uint   `json:"id_rol"     binding:"required"`
	Estado     string `json:"estado"     binding:"omitempty,oneof=Activo Inactivo"`
}

// UpdateInstructorRequest 更新讲师请求（部分更新；contrasena 为空时不修改密码）
type UpdateInstructorRequest struct {
	Cedula     *string `json:"cedula"     binding:"omitempty,max=30"`
	Nombre     *string `json:"nombre"     binding:"omitempty,max=255"`
	Email      *string `json:"email"`
	Contrasena *string `json:"contrasena"`
	IDRol      *uint   `json:"id_rol"`
	Estado     *string `json:"estado"     binding:"omitempty,oneof=Activo Inactivo"`
}

// CambiarContrasenaRequest 修改密码请求
type CambiarContrasenaRequest struct {
	NuevaContrasena string `json:"nueva_contrasena" binding:"required,min=6"`
}

// InstructorResponse 讲师信息（脱敏）
type InstructorResponse struct {
	IDInstructor uint   `json:"id_instructor"`
	Cedula       string `json:"cedula"`
	Nombre       string `json:"nombre"`
	Email        string `json:"email"`
	IDRol        uint   `json:"id_rol"`
	Rol          string `json:"rol,omitempty"`
	Estado       string `json:"estado"`
	PrimerAcceso bool   `json:"primer_acceso"`
}

// RolResponse 角色
type RolResponse struct {
	IDRol    uint     `json:"id_rol"`
	Nombre   string   `json:"nombre"`
	Permisos []string `json:"permisos"`
}

// PermisoResponse 权限
type PermisoResponse struct {
	IDPermiso uint   `json:"id_permiso"`
	Nombre    string `json:"nombre"`
}
