package worker

import (
	"context"
	"errors"
	"testing"

	"fjacquet/portfolio-parser/internal/logging"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
)

func TestWorkerCommand_Metadata(t *testing.T) {
	assert.Equal(t, "worker", Cmd.Use)
	assert.Contains(t, Cmd.Short, "Redis Stream")
	assert.NotNil(t, Cmd.RunE)
	assert.NotNil(t, Cmd.Flags().Lookup("status-addr"))
}

func TestRunWorker_NotInitialized(t *testing.T) {
	err := runWorker(&cobra.Command{}, nil)
	assert.EqualError(t, err, "application not initialized")
}

func TestServeStatus_LogsFailure(t *testing.T) {
	logger := logging.NewMockLogger()
	serveStatus(context.Background(), func(context.Context) error {
		return errors.New("address already in use")
	}, logger)

	assert.True(t, logger.HasEntry("ERROR", "Status server stopped"))
}
