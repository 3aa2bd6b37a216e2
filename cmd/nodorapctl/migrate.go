package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/model"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Gestiona el esquema de base de datos",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Aplica las migraciones pendientes (sqlite: AutoMigrate + semillas)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := cargarEntorno()
		if err != nil {
			return err
		}
		defer env.close()

		if err := database.Prepare(env.db, env.cfg.Database.Driver, model.All(), env.logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migraciones aplicadas")
		return nil
	},
}

var migrateSteps int

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Revierte migraciones (solo PostgreSQL)",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := cargarEntorno()
		if err != nil {
			return err
		}
		defer env.close()

		if env.cfg.Database.Driver == "sqlite" {
			return fmt.Errorf("migrate down no está disponible con sqlite")
		}
		sqlDB, err := env.db.DB()
		if err != nil {
			return err
		}
		if err := database.RollbackMigrations(sqlDB, migrateSteps, env.logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d migración(es) revertida(s)\n", migrateSteps)
		return nil
	},
}

func init() {
	migrateDownCmd.Flags().IntVar(&migrateSteps, "steps", 1, "número de versiones a revertir")

	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
}
