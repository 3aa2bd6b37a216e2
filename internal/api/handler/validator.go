package handler

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义规则
// 需在路由初始化前调用一次
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("jornada", validarJornada)
}

// validarJornada 仅接受 Diurna / Nocturna
func validarJornada(fl validator.FieldLevel) bool {
	return model.TrimestresPorJornada(fl.Field().String()) > 0
}
