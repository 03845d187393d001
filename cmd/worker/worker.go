// Package worker provides the command that serves import jobs from Redis.
package worker

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/portfolio-parser/cmd/root"
	"fjacquet/portfolio-parser/internal/logging"

	"github.com/spf13/cobra"
)

var statusAddr string

// Cmd represents the worker command
var Cmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume import jobs from a Redis Stream",
	Long: `Run the import worker. Jobs are read from the configured stream through a
consumer group; each result is published back onto the stream and the job
message acknowledged.

The worker stops on SIGINT or SIGTERM. With --status-addr (or STATUS_ADDR) an
HTTP server reports the status of jobs handled by this process.

Example:
  portfolio-parser worker --status-addr :8080`,
	RunE: runWorker,
}

func init() {
	Cmd.Flags().StringVar(&statusAddr, "status-addr", "", "Serve job status on this address (overrides status.addr)")
}

func runWorker(cmd *cobra.Command, args []string) error {
	c := root.GetContainer()
	if c == nil {
		return fmt.Errorf("application not initialized")
	}
	if statusAddr != "" {
		c.GetConfig().Status.Addr = statusAddr
	}
	logger := c.GetLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, client, err := c.NewWorker()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.WithError(err).Warn("Failed to close stream client")
		}
	}()

	if srv := c.NewStatusServer(); srv != nil {
		go serveStatus(ctx, srv.Start, logger)
	}

	return w.Run(ctx)
}

func serveStatus(ctx context.Context, start func(context.Context) error, logger logging.Logger) {
	if err := start(ctx); err != nil {
		logger.WithError(err).Error("Status server stopped")
	}
}
