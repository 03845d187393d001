// Package parse provides the command that runs one import job locally.
package parse

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"fjacquet/portfolio-parser/cmd/root"
	"fjacquet/portfolio-parser/internal/container"
	"fjacquet/portfolio-parser/internal/export"
	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Options are the inputs of one local job.
type Options struct {
	Directory string
	Files     []string
	JobID     string
	Output    string
	CSVDir    string
}

var opts Options

// Cmd represents the parse command
var Cmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse transaction exports from a directory",
	Long: `Run one import job locally. The named files are read from the directory in
order and merged into one chronological result, written as JSON to stdout or
--output. With --csv-dir one CSV file per record kind is written as well.

Example:
  portfolio-parser parse -d exports/ 2023.csv 2024.xlsx --output result.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := root.GetContainer()
		if c == nil {
			return fmt.Errorf("application not initialized")
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		o := opts
		o.Files = args
		_, err := Run(ctx, c, o, cmd.OutOrStdout())
		return err
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Directory, "directory", "d", ".", "Directory holding the files")
	Cmd.Flags().StringVar(&opts.JobID, "job-id", "", "Job id (default: a random UUID)")
	Cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write the JSON result to this file instead of stdout")
	Cmd.Flags().StringVar(&opts.CSVDir, "csv-dir", "", "Also write one CSV file per record kind into this directory")
}

// Run processes the job described by o and writes its result. File and row
// problems are reported inside the result, not as an error.
func Run(ctx context.Context, c *container.Container, o Options, stdout io.Writer) (*models.JobResult, error) {
	if o.JobID == "" {
		o.JobID = uuid.NewString()
	}
	logger := c.GetLogger().WithField(logging.FieldJobID, o.JobID)

	result, err := c.GetProcessor().Process(ctx, models.JobRequest{
		JobID:     o.JobID,
		Directory: o.Directory,
		Files:     o.Files,
		Step:      "parse",
	})
	if err != nil {
		return nil, err
	}

	if o.Output != "" {
		if err := export.WriteJSONFile(o.Output, result); err != nil {
			return nil, err
		}
		logger.Info("Wrote JSON result", logging.F(logging.FieldFile, o.Output))
	} else if err := export.WriteJSON(stdout, result); err != nil {
		return nil, err
	}

	if o.CSVDir != "" {
		if err := c.GetCSVWriter().WriteCSV(o.CSVDir, result); err != nil {
			return nil, err
		}
	}

	for _, e := range result.Errors {
		logger.Warn(e)
	}
	return result, nil
}
