package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jhoicas/intelliservice-api/internal/bootstrap"
)

func serveCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta la API HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, log, err := env.open(ctx)
			if err != nil {
				return err
			}
			defer c.Close()

			app := bootstrap.NewServer(c)
			errc := make(chan error, 1)
			go func() { errc <- app.Listen(c.Config.HTTP.Addr()) }()
			log.Info().Str("addr", c.Config.HTTP.Addr()).Msg("API escuchando")

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			log.Info().Msg("señal de apagado recibida, cerrando servidor...")
			c.Hub.Close()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return app.ShutdownWithContext(shutdownCtx)
		},
	}
}
