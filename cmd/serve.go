package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/api"
	"github.com/spartan-coder90/sar-narrative-generator-sub000/internal/casefile"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initPipeline(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer env.Close()

		handler, err := api.New(api.Options{
			Pipeline:    env.Pipeline,
			Store:       env.Store,
			Cases:       env.Cases,
			Assembler:   env.Assembler,
			Breaker:     env.Breaker(),
			CORSOrigins: cfg.Server.CORSOrigins,
			MaxUploadMB: cfg.Server.MaxUploadMB,
		})
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go reloadCases(ctx, env.Cases, cfg.Cases.Path, hup)

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(sctx); err != nil {
				zap.L().Warn("server shutdown", zap.Error(err))
			}
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	},
}

// reloadCases re-reads the case repository file each time hup fires. A file
// that fails to load leaves the current cases in place.
func reloadCases(ctx context.Context, repo *casefile.Repository, path string, hup <-chan os.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			fresh, err := casefile.Open(ctx, path)
			if err != nil {
				zap.L().Warn("cases reload failed, keeping current cases", zap.String("path", path), zap.Error(err))
				continue
			}
			repo.Replace(fresh)
			zap.L().Info("cases reloaded", zap.String("source", repo.Source()), zap.Int("cases", repo.Len()))
		}
	}
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
