// Package cli comandos de la CLI intelliservice: servidor HTTP y tareas operativas
// (exportar reportes, generar nómina) contra la misma base de datos.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jhoicas/intelliservice-api/internal/bootstrap"
	"github.com/jhoicas/intelliservice-api/pkg/config"
	"github.com/jhoicas/intelliservice-api/pkg/logger"
)

// Env configuración y constructor del contenedor. Los tests reemplazan Build.
type Env struct {
	LoadConfig func() (*config.Config, error)
	Build      func(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bootstrap.Container, error)
	LogLevel   string
}

// DefaultEnv configuración desde variables de entorno y contenedor real.
func DefaultEnv() *Env {
	return &Env{LoadConfig: config.Load, Build: bootstrap.New, LogLevel: "info"}
}

// RootCommand crea el comando raíz con todos los subcomandos.
func RootCommand(env *Env) *cobra.Command {
	root := &cobra.Command{
		Use:           "intelliservice",
		Short:         "IntelliService API y tareas operativas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&env.LogLevel, "log-level", env.LogLevel, "trace | debug | info | warn | error")

	root.AddCommand(
		serveCommand(env),
		reportCommand(env),
		payrollCommand(env),
	)
	return root
}

// open carga la configuración, el logger y el contenedor.
func (env *Env) open(ctx context.Context) (*bootstrap.Container, *logger.Logger, error) {
	cfg, err := env.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: env.LogLevel, Service: cfg.App.Name})
	c, err := env.Build(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return c, log, nil
}
