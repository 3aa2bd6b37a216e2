package dto

// ── 班次模块 DTO ──

// CreateFichaRequest 创建班次
// fecha_* 格式 YYYY-MM-DD；jornada 决定季度数
type CreateFichaRequest struct {
	CodigoFicha string  `json:"codigo_ficha" binding:"required,max=30"`
	Modalidad   string  `json:"modalidad"    binding:"required,max=50"`
	Jornada     string  `json:"jornada"      binding:"required,jornada"`
	Ambiente    *string `json:"ambiente"     binding:"omitempty,max=100"`
	FechaInicio string  `json:"fecha_inicio" binding:"required,datetime=2006-01-02"`
	FechaFinal  string  `json:"fecha_final"  binding:"required,datetime=2006-01-02"`
	IDPrograma  uint    `json:"id_programa"  binding:"required"`
	IDGestor    *uint   `json:"id_gestor"`
}

// UpdateFichaRequest 更新班次；codigo_ficha 与 jornada 不可修改，出现即拒绝
type UpdateFichaRequest struct {
	CodigoFicha *string `json:"codigo_ficha"`
	Jornada     *string `json:"jornada"`
	Modalidad   *string `json:"modalidad"    binding:"omitempty,max=50"`
	Ambiente    *string `json:"ambiente"     binding:"omitempty,max=100"`
	FechaInicio *string `json:"fecha_inicio" binding:"omitempty,datetime=2006-01-02"`
	FechaFinal  *string `json:"fecha_final"  binding:"omitempty,datetime=2006-01-02"`
	IDGestor    *uint   `json:"id_gestor"`
}

// FichaResponse 班次信息
type FichaResponse struct {
	IDFicha           uint    `json:"id_ficha"`
	CodigoFicha       string  `json:"codigo_ficha"`
	Modalidad         string  `json:"modalidad"`
	Jornada           string  `json:"jornada"`
	Ambiente          *string `json:"ambiente"`
	FechaInicio       string  `json:"fecha_inicio"`
	FechaFinal        string  `json:"fecha_final"`
	CantidadTrimestre int     `json:"cantidad_trimestre"`
	IDPrograma        uint    `json:"id_programa"`
	IDGestor          *uint   `json:"id_gestor"`
}

// TrimestreResponse 季度
type TrimestreResponse struct {
	IDTrimestre uint    `json:"id_trimestre"`
	NoTrimestre int     `json:"no_trimestre"`
	Fase        *string `json:"fase"`
	IDFicha     uint    `json:"id_ficha"`
}
