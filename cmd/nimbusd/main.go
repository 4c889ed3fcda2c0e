// Command nimbusd runs the nimbusdb server: a RESP2 listener backed by
// the in-memory core, plus an admin HTTP surface for health and
// introspection.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nimbusdb/nimbusdb/internal/adminhttp"
	"github.com/nimbusdb/nimbusdb/internal/config"
	"github.com/nimbusdb/nimbusdb/internal/dispatch"
	"github.com/nimbusdb/nimbusdb/internal/persistence"
	"github.com/nimbusdb/nimbusdb/internal/server"
	"github.com/nimbusdb/nimbusdb/internal/store"
)

var (
	respAddr  string
	adminAddr string
	databases int
)

var rootCmd = &cobra.Command{
	Use:     "nimbusd",
	Short:   "nimbusdb is an in-memory key-value store speaking the RESP2 wire protocol",
	Version: "0.1.0",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the RESP2 listener and admin HTTP surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&respAddr, "addr", ":6379", "RESP2 listen address")
	serveCmd.Flags().StringVar(&adminAddr, "admin-addr", "127.0.0.1:8080", "admin HTTP listen address")
	serveCmd.Flags().IntVar(&databases, "databases", 16, "number of SELECT-able namespaces")
	rootCmd.AddCommand(serveCmd)
}

func newLogger() *zap.Logger {
	if os.Getenv("NIMBUSDB_ENV") == "dev" {
		logConfig := zap.NewDevelopmentConfig()
		logConfig.EncoderConfig.TimeKey = ""
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logConfig.DisableStacktrace = true
		logConfig.DisableCaller = true
		return zap.Must(logConfig.Build())
	}
	logConfig := zap.NewProductionConfig()
	logConfig.DisableStacktrace = true
	return zap.Must(logConfig.Build())
}

func runServe() error {
	log := newLogger()
	defer log.Sync()
	log = log.Named("main")

	cfg := config.New()
	if databases > 0 {
		_ = cfg.Set("databases", fmt.Sprintf("%d", databases))
	}
	n := cfg.Int("databases", 16)

	st := store.New(n, log)
	defer st.Close()

	persist := persistence.New(log)
	requirepass, _ := cfg.Get("requirepass")

	d := dispatch.New(st, log, requirepass)
	d.SetConfig(cfg)
	d.SetPersistence(persist)

	devMode := os.Getenv("NIMBUSDB_ENV") == "dev"
	adminHandler := adminhttp.New(st, persist, cfg, log, devMode)
	adminSrv := &http.Server{
		Addr:         adminAddr,
		Handler:      adminHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     zap.NewStdLog(log.Named("admin-http").WithOptions(zap.AddCallerSkip(1))),
	}

	respSrv := server.New(st, d, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sv, svCtx := server.NewSupervisor(ctx)
	sv.Go(func() error {
		return respSrv.Serve(svCtx, respAddr)
	})
	sv.Go(func() error {
		log.Info("serving admin HTTP", zap.String("addr", adminAddr))
		if err := adminSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	sv.Go(func() error {
		<-svCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = adminSrv.Shutdown(shutdownCtx)
		return respSrv.Close()
	})

	log.Info("nimbusdb starting",
		zap.String("resp_addr", respAddr),
		zap.Int("databases", n),
	)
	if err := sv.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
