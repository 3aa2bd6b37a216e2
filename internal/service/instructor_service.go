package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/repository"
	pkgerrors "github.com/k4mimi/Proyecto-Alistamiento/pkg/errors"
)

const minLongitudContrasena = 6

var (
	ErrCedulaRegistrada = errors.New("La cédula ya está registrada")
	ErrEmailRegistrado  = errors.New("El email ya está registrado")
	ErrEmailInvalido    = errors.New("El correo no tiene un formato válido")
	ErrContrasenaCorta  = errors.New("La contraseña debe tener al menos 6 caracteres")
	ErrRolNoEncontrado  = errors.New("Rol no encontrado")
	ErrEstadoInvalido   = errors.New("Estado inválido: debe ser Activo o Inactivo")
	ErrInstructorEnUso  = errors.New("El instructor tiene registros asociados y no se puede eliminar")
	ErrInstructorCampos = errors.New("Cédula, nombre, email y contraseña son obligatorios")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// InstructorService 讲师账号管理接口
type InstructorService interface {
	List(ctx context.Context) ([]dto.InstructorResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.InstructorResponse, error)
	Create(ctx context.Context, req *dto.CreateInstructorRequest) (*dto.InstructorResponse, error)
	Update(ctx context.Context, id uint, req *dto.UpdateInstructorRequest) (*dto.InstructorResponse, error)
	Delete(ctx context.Context, id uint) error
	CambiarContrasena(ctx context.Context, id uint, req *dto.CambiarContrasenaRequest) error

	ListRoles(ctx context.Context) ([]dto.RolResponse, error)
	ListPermisos(ctx context.Context) ([]dto.PermisoResponse, error)
}

type instructorService struct {
	repo       *repository.Repository
	bcryptCost int
	cache      MatrizCache
	logger     *zap.Logger
}

// NewInstructorService 创建 InstructorService 实例；bcryptCost ≤ 0 时使用 bcrypt.DefaultCost
// cache 可为 nil；删除讲师后按受影响班次失效矩阵缓存
func NewInstructorService(repo *repository.Repository, bcryptCost int, cache MatrizCache, logger *zap.Logger) InstructorService {
	if bcryptCost <= 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &instructorService{
		repo:       repo,
		bcryptCost: bcryptCost,
		cache:      cache,
		logger:     logger,
	}
}

func (s *instructorService) List(ctx context.Context) ([]dto.InstructorResponse, error) {
	list, err := s.repo.Instructor.List(ctx)
	if err != nil {
		s.logger.Error("查询讲师列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.InstructorResponse, 0, len(list))
	for i := range list {
		out = append(out, *toInstructorResponse(&list[i]))
	}
	return out, nil
}

func (s *instructorService) GetByID(ctx context.Context, id uint) (*dto.InstructorResponse, error) {
	inst, err := s.getInstructor(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInstructorResponse(inst), nil
}

func (s *instructorService) Create(ctx context.Context, req *dto.CreateInstructorRequest) (*dto.InstructorResponse, error) {
	cedula := strings.TrimSpace(req.Cedula)
	nombre := strings.TrimSpace(req.Nombre)
	email := strings.TrimSpace(req.Email)
	if cedula == "" || nombre == "" || email == "" || req.Contrasena == "" {
		return nil, ErrInstructorCampos
	}
	if !emailRe.MatchString(email) {
		return nil, ErrEmailInvalido
	}
	if utf8.RuneCountInString(req.Contrasena) < minLongitudContrasena {
		return nil, ErrContrasenaCorta
	}
	estado := req.Estado
	if estado == "" {
		estado = model.EstadoActivo
	}
	if !estadoValido(estado) {
		return nil, ErrEstadoInvalido
	}

	if err := s.checkUnicos(ctx, cedula, email, 0); err != nil {
		return nil, err
	}
	if err := s.checkRol(ctx, req.IDRol); err != nil {
		return nil, err
	}

	hash, err := s.hash(req.Contrasena)
	if err != nil {
		return nil, err
	}

	inst := &model.Instructor{
		IDRol:        req.IDRol,
		Nombre:       nombre,
		Email:        email,
		Contrasena:   hash,
		Cedula:       cedula,
		Estado:       estado,
		PrimerAcceso: 1,
	}
	if err := s.repo.Instructor.Create(ctx, inst); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrCedulaRegistrada
		}
		s.logger.Error("创建讲师失败", zap.String("cedula", cedula), zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建讲师", zap.Uint("id_instructor", inst.IDInstructor), zap.Uint("id_rol", inst.IDRol))
	return s.GetByID(ctx, inst.IDInstructor)
}

func (s *instructorService) Update(ctx context.Context, id uint, req *dto.UpdateInstructorRequest) (*dto.InstructorResponse, error) {
	inst, err := s.getInstructor(ctx, id)
	if err != nil {
		return nil, err
	}

	cedula, email := inst.Cedula, inst.Email
	if req.Cedula != nil {
		cedula = strings.TrimSpace(*req.Cedula)
	}
	if req.Email != nil {
		email = strings.TrimSpace(*req.Email)
		if !emailRe.MatchString(email) {
			return nil, ErrEmailInvalido
		}
	}
	if cedula == "" {
		return nil, ErrInstructorCampos
	}
	if err := s.checkUnicos(ctx, cedula, email, id); err != nil {
		return nil, err
	}
	inst.Cedula, inst.Email = cedula, email

	if req.Nombre != nil {
		nombre := strings.TrimSpace(*req.Nombre)
		if nombre == "" {
			return nil, ErrInstructorCampos
		}
		inst.Nombre = nombre
	}
	if req.IDRol != nil && *req.IDRol != inst.IDRol {
		if err := s.checkRol(ctx, *req.IDRol); err != nil {
			return nil, err
		}
		inst.IDRol = *req.IDRol
	}
	if req.Estado != nil {
		if !estadoValido(*req.Estado) {
			return nil, ErrEstadoInvalido
		}
		inst.Estado = *req.Estado
	}
	// contrasena 为空字符串时保持原密码
	if req.Contrasena != nil && *req.Contrasena != "" {
		if utf8.RuneCountInString(*req.Contrasena) < minLongitudContrasena {
			return nil, ErrContrasenaCorta
		}
		hash, err := s.hash(*req.Contrasena)
		if err != nil {
			return nil, err
		}
		inst.Contrasena = hash
	}

	inst.Rol = nil
	if err := s.repo.Instructor.Update(ctx, inst); err != nil {
		if pkgerrors.IsDuplicate(err) {
			return nil, ErrCedulaRegistrada
		}
		s.logger.Error("更新讲师失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete 删除讲师并解除其班次关联；gestor 与排课记录中的指定讲师一并清空
func (s *instructorService) Delete(ctx context.Context, id uint) error {
	if _, err := s.getInstructor(ctx, id); err != nil {
		return err
	}

	var fichas []uint
	err := runInTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if _, err := txRepo.InstructorFicha.DeleteByInstructor(ctx, id); err != nil {
			return err
		}
		ids, err := txRepo.RapTrimestre.FichasDeInstructor(ctx, id)
		if err != nil {
			return err
		}
		fichas = ids
		if _, err := txRepo.RapTrimestre.ClearInstructor(ctx, id); err != nil {
			return err
		}
		if _, err := txRepo.Ficha.ClearGestor(ctx, id); err != nil {
			return err
		}
		n, err := txRepo.Instructor.Delete(ctx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrInstructorNoEncontrado
		}
		return nil
	})
	if err != nil {
		if pkgerrors.IsForeignKey(err) {
			return ErrInstructorEnUso
		}
		if errors.Is(err, ErrInstructorNoEncontrado) {
			return err
		}
		s.logger.Error("删除讲师失败", zap.Uint("id", id), zap.Error(err))
		return err
	}

	if s.cache != nil {
		for _, idFicha := range fichas {
			if err := s.cache.InvalidateMatriz(ctx, idFicha); err != nil {
				s.logger.Warn("清除矩阵缓存失败", zap.Uint("id_ficha", idFicha), zap.Error(err))
			}
		}
	}

	s.logger.Info("删除讲师", zap.Uint("id_instructor", id), zap.Int("fichas", len(fichas)))
	return nil
}

func (s *instructorService) CambiarContrasena(ctx context.Context, id uint, req *dto.CambiarContrasenaRequest) error {
	if utf8.RuneCountInString(req.NuevaContrasena) < minLongitudContrasena {
		return ErrContrasenaCorta
	}
	hash, err := s.hash(req.NuevaContrasena)
	if err != nil {
		return err
	}
	n, err := s.repo.Instructor.UpdateContrasena(ctx, id, hash)
	if err != nil {
		s.logger.Error("修改密码失败", zap.Uint("id", id), zap.Error(err))
		return err
	}
	if n == 0 {
		return ErrInstructorNoEncontrado
	}
	return nil
}

// ────────────────────── 角色 / 权限 ──────────────────────

func (s *instructorService) ListRoles(ctx context.Context) ([]dto.RolResponse, error) {
	roles, err := s.repo.Rol.List(ctx)
	if err != nil {
		s.logger.Error("查询角色失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.RolResponse, 0, len(roles))
	for _, r := range roles {
		permisos, err := s.repo.Rol.PermisosDeRol(ctx, r.ID)
		if err != nil {
			s.logger.Error("查询角色权限失败", zap.Uint("id_rol", r.ID), zap.Error(err))
			return nil, err
		}
		if permisos == nil {
			permisos = []string{}
		}
		out = append(out, dto.RolResponse{IDRol: r.ID, Nombre: r.Nombre, Permisos: permisos})
	}
	return out, nil
}

func (s *instructorService) ListPermisos(ctx context.Context) ([]dto.PermisoResponse, error) {
	list, err := s.repo.Rol.ListPermisos(ctx)
	if err != nil {
		s.logger.Error("查询权限失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.PermisoResponse, 0, len(list))
	for _, p := range list {
		out = append(out, dto.PermisoResponse{IDPermiso: p.IDPermiso, Nombre: p.Nombre})
	}
	return out, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *instructorService) getInstructor(ctx context.Context, id uint) (*model.Instructor, error) {
	inst, err := s.repo.Instructor.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstructorNoEncontrado
		}
		s.logger.Error("查询讲师失败", zap.Uint("id", id), zap.Error(err))
		return nil, err
	}
	return inst, nil
}

func (s *instructorService) checkUnicos(ctx context.Context, cedula, email string, excludeID uint) error {
	existe, err := s.repo.Instructor.ExistsCedula(ctx, cedula, excludeID)
	if err != nil {
		return err
	}
	if existe {
		return ErrCedulaRegistrada
	}
	existe, err = s.repo.Instructor.ExistsEmail(ctx, email, excludeID)
	if err != nil {
		return err
	}
	if existe {
		return ErrEmailRegistrado
	}
	return nil
}

func (s *instructorService) checkRol(ctx context.Context, idRol uint) error {
	if _, err := s.repo.Rol.GetByID(ctx, idRol); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRolNoEncontrado
		}
		return err
	}
	return nil
}

func (s *instructorService) hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), s.bcryptCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return "", err
	}
	return string(b), nil
}

func estadoValido(estado string) bool {
	return estado == model.EstadoActivo || estado == model.EstadoInactivo
}

func toInstructorResponse(i *model.Instructor) *dto.InstructorResponse {
	resp := &dto.InstructorResponse{
		IDInstructor: i.IDInstructor,
		Cedula:       i.Cedula,
		Nombre:       i.Nombre,
		Email:        i.Email,
		IDRol:        i.IDRol,
		Estado:       i.Estado,
		PrimerAcceso: i.PrimerAcceso == 1,
	}
	if i.Rol != nil {
		resp.Rol = i.Rol.Nombre
	}
	return resp
}
