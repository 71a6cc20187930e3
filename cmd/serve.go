package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/simranmultani197/Simforge-sub000/sim/worker"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the simulation worker protocol over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			w := worker.New(worker.WithChunkSize(v.GetInt("chunk-size")))
			defer w.Close()
			srv, err := newServer(ctx, w)
			if err != nil {
				return err
			}
			httpServer := &http.Server{
				Addr:              v.GetString("addr"),
				Handler:           srv,
				ReadHeaderTimeout: 10 * time.Second,
			}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := httpServer.Shutdown(shutdownCtx); err != nil {
					logrus.WithError(err).Warn("shutting down server")
				}
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "simforge serving session %s on %s\n", w.Session(), httpServer.Addr)
			logrus.WithFields(logrus.Fields{"addr": httpServer.Addr, "session": w.Session()}).Info("server listening")
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			logrus.Info("server stopped")
			return nil
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().Int("chunk-size", worker.DefaultChunkSize, "Events run between command checks")
	_ = v.BindPFlags(cmd.Flags())
	return cmd
}
