package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/qbank/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the question bank over HTTP",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides QBANK_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := setup(cmd)
	if err != nil {
		return err
	}
	defer rt.Close()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		rt.cfg.Server.Addr = addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, err := rt.service(ctx, false)
	if err != nil {
		return err
	}

	srv := server.New(rt.cfg.Server, svc, rt.log)
	if err := srv.ListenAndServe(ctx); err != nil {
		return err
	}
	rt.log.Info("qbank stopped")
	return nil
}
