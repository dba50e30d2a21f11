package cli

import (
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/intelliservice-api/internal/domain/report"
)

func reportCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Reportes de BI",
	}
	cmd.AddCommand(reportExportCommand(env))
	return cmd
}

type exportFlags struct {
	report  string
	from    string
	to      string
	format  string
	out     string
	company string
}

func (f exportFlags) validate() (report.DateRange, error) {
	if f.company == "" {
		return report.DateRange{}, fmt.Errorf("--company es obligatorio")
	}
	if !slices.Contains(report.Names(), f.report) {
		return report.DateRange{}, fmt.Errorf("--report %q desconocido; disponibles: %v", f.report, report.Names())
	}
	if f.format != "xlsx" && f.format != "pdf" {
		return report.DateRange{}, fmt.Errorf("--format debe ser xlsx o pdf")
	}
	return report.ParseRange(f.from, f.to, time.Now())
}

func reportExportCommand(env *Env) *cobra.Command {
	var f exportFlags
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Genera el archivo de un reporte",
		Example: "  intelliservice report export --report dso --from 2024-01-01 --to 2024-03-31 " +
			"--format xlsx --company <uuid>",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := f.validate()
			if err != nil {
				return err
			}
			c, log, err := env.open(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()

			file, err := c.Export.Export(cmd.Context(), f.company, f.report, f.format, r)
			if err != nil {
				return err
			}
			out := f.out
			if out == "" {
				out = file.Filename
			}
			if err := os.WriteFile(out, file.Content, 0o644); err != nil {
				return fmt.Errorf("escribir %s: %w", out, err)
			}
			if file.Degraded {
				log.Warn().Str("report", f.report).Msg("dataset no disponible, el archivo contiene un resumen vacío")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&f.report, "report", "", "nombre del reporte (dso, financials, ...)")
	cmd.Flags().StringVar(&f.from, "from", "", "inicio YYYY-MM-DD (default: primer día del mes)")
	cmd.Flags().StringVar(&f.to, "to", "", "fin YYYY-MM-DD (default: hoy)")
	cmd.Flags().StringVar(&f.format, "format", "xlsx", "xlsx | pdf")
	cmd.Flags().StringVar(&f.out, "out", "", "archivo de salida (default: nombre generado)")
	cmd.Flags().StringVar(&f.company, "company", "", "ID de la empresa")
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
