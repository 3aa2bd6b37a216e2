package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/k4mimi/Proyecto-Alistamiento/internal/service"
	"github.com/k4mimi/Proyecto-Alistamiento/pkg/extractor"
)

var ingestTipo string

var ingestCmd = &cobra.Command{
	Use:   "ingest {programa|proyecto} <archivo.pdf>",
	Short: "Ingresa un PDF desde disco sin pasar por la API",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flujo, path := args[0], args[1]
		if !strings.EqualFold(filepath.Ext(path), ".pdf") {
			return fmt.Errorf("solo se permiten archivos PDF: %s", path)
		}
		if _, err := os.Stat(path); err != nil {
			return err
		}

		env, err := cargarEntorno()
		if err != nil {
			return err
		}
		defer env.close()

		pdfSvc := service.NewPdfService(env.repo, extractor.NewClient(&env.cfg.Extractor, env.logger), env.logger)

		var result interface{}
		switch flujo {
		case "programa":
			result, err = pdfSvc.ProcesarPrograma(cmd.Context(), path, ingestTipo)
		case "proyecto":
			result, err = pdfSvc.ProcesarProyecto(cmd.Context(), path)
		default:
			return fmt.Errorf("flujo desconocido %q: use programa o proyecto", flujo)
		}
		if err != nil {
			if extErr, ok := extractor.AsError(err); ok {
				return fmt.Errorf("extractor (%s): %w", extErr.Kind, err)
			}
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestTipo, "tipo", "todo", "modo de extracción para programa: programa|competencias|todo")
}
