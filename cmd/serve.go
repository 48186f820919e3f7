package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"splotty-labels/api"
	"splotty-labels/monitor"
)

func NewServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the presets HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			monitors := monitor.NewManager(a.log)
			router := api.RegisterRoutes(a.store, monitors, a.log)

			srv := &http.Server{
				Addr:    fmt.Sprintf(":%s", a.cfg.GetString("port")),
				Handler: router,
			}
			errc := make(chan error, 1)
			go func() { errc <- srv.ListenAndServe() }()
			a.log.Infof("splotty listening on %s, presets in %s", srv.Addr, a.store.BaseDir())

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for _, mon := range monitors.List() {
				_ = monitors.Kill(mon.ID)
			}
			if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().String("port", "", "Port to listen on")
	cobra.CheckErr(a.cfg.BindPFlag("port", cmd.Flags().Lookup("port")))
	return cmd
}
