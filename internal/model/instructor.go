package model

// 讲师状态
const (
	EstadoActivo   = "Activo"
	EstadoInactivo = "Inactivo"
)

// Rol 角色，表 roles
// 主键字段名为 ID（列 id_rol），Instructor.Rol 才会被解析为 belongs-to，外键落在 instructores 上
type Rol struct {
	ID     uint   `gorm:"column:id_rol;primaryKey;autoIncrement" json:"id_rol"`
	Nombre string `gorm:"type:varchar(50);not null;uniqueIndex"  json:"nombre"`
}

// TableName 指定表名
func (Rol) TableName() string { return "roles" }

// 权限名称，与 000002 迁移中的种子数据一致
const (
	PermisoGestionarProgramas    = "gestionar_programas"
	PermisoGestionarFichas       = "gestionar_fichas"
	PermisoGestionarInstructores = "gestionar_instructores"
	PermisoCargarPDF             = "cargar_pdf"
	PermisoEditarSabana          = "editar_sabana"
	PermisoVerSabana             = "ver_sabana"
	PermisoGestionarPlaneaciones = "gestionar_planeaciones"
)

// Permiso 权限，表 permisos
type Permiso struct {
	IDPermiso uint   `gorm:"column:id_permiso;primaryKey;autoIncrement" json:"id_permiso"`
	Nombre    string `gorm:"type:varchar(100);not null;uniqueIndex"     json:"nombre"`
}

// TableName 指定表名
func (Permiso) TableName() string { return "permisos" }

// RolPermiso 角色与权限关联，表 roles_permisos
type RolPermiso struct {
	IDRolesPermiso uint `gorm:"column:id_roles_permiso;primaryKey;autoIncrement" json:"id_roles_permiso"`
	IDRol          uint `gorm:"column:id_rol;not null;uniqueIndex:uk_rol_permiso"     json:"id_rol"`
	IDPermiso      uint `gorm:"column:id_permiso;not null;uniqueIndex:uk_rol_permiso" json:"id_permiso"`
}

// TableName 指定表名
func (RolPermiso) TableName() string { return "roles_permisos" }

// Instructor 讲师（同时是系统登录账号），表 instructores
// PrimerAcceso=1 时登录后必须先修改密码
type Instructor struct {
	IDInstructor uint   `gorm:"column:id_instructor;primaryKey;autoIncrement" json:"id_instructor"`
	IDRol        uint   `gorm:"column:id_rol;not null;index"                  json:"id_rol"`
	Nombre       string `gorm:"type:varchar(255);not null"                    json:"nombre"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"        json:"email"`
	Contrasena   string `gorm:"type:varchar(255);not null"                    json:"-"`
	Cedula       string `gorm:"type:varchar(30);not null;uniqueIndex"         json:"cedula"`
	Estado       string `gorm:"type:varchar(20);not null;default:'Activo'"    json:"estado"`
	PrimerAcceso int    `gorm:"not null;default:1"                            json:"primer_acceso"`
	Rol          *Rol   `gorm:"foreignKey:IDRol;references:ID"                json:"rol,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Instructor) TableName() string { return "instructores" }
