package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/dto"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
)

const rolAdministrador = "Administrador"

var adminFlags struct {
	cedula string
	nombre string
	email  string
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Crea el instructor administrador inicial",
	Long:  "La contraseña se lee de NODORAP_ADMIN_PASSWORD para no dejarla en el historial del shell.",
	RunE: func(cmd *cobra.Command, args []string) error {
		password := os.Getenv("NODORAP_ADMIN_PASSWORD")
		if password == "" {
			return errors.New("defina NODORAP_ADMIN_PASSWORD")
		}

		env, err := cargarEntorno()
		if err != nil {
			return err
		}
		defer env.close()

		rol, err := env.repo.Rol.GetByNombre(cmd.Context(), rolAdministrador)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("rol %s no existe, ejecute primero migrate up", rolAdministrador)
			}
			return err
		}

		svc := service.NewInstructorService(env.repo, env.cfg.Auth.BcryptCost, nil, env.logger)
		creado, err := svc.Create(cmd.Context(), &dto.CreateInstructorRequest{
			Cedula:     adminFlags.cedula,
			Nombre:     adminFlags.nombre,
			Email:      adminFlags.email,
			Contrasena: password,
			IDRol:      rol.ID,
			Estado:     model.EstadoActivo,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "administrador creado: id=%d email=%s\n", creado.IDInstructor, creado.Email)
		return nil
	},
}

func init() {
	createAdminCmd.Flags().StringVar(&adminFlags.cedula, "cedula", "", "cédula del administrador")
	createAdminCmd.Flags().StringVar(&adminFlags.nombre, "nombre", "", "nombre completo")
	createAdminCmd.Flags().StringVar(&adminFlags.email, "email", "", "correo de acceso")
	createAdminCmd.MarkFlagRequired("cedula")
	createAdminCmd.MarkFlagRequired("nombre")
	createAdminCmd.MarkFlagRequired("email")
}
