// Package container provides dependency injection for portfolio-parser.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"fmt"

	"fjacquet/portfolio-parser/internal/batch"
	"fjacquet/portfolio-parser/internal/categorizer"
	"fjacquet/portfolio-parser/internal/config"
	"fjacquet/portfolio-parser/internal/export"
	"fjacquet/portfolio-parser/internal/jobs"
	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parser"
	"fjacquet/portfolio-parser/internal/queue"
	"fjacquet/portfolio-parser/internal/status"
	"fjacquet/portfolio-parser/internal/store"
	"fjacquet/portfolio-parser/internal/transformer"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger      logging.Logger
	config      *config.Config
	rules       *models.RulesConfig
	categorizer *categorizer.Categorizer
	transformer *transformer.Transformer
	loader      *parser.FileLoader
	processor   *batch.Processor
	jobs        *jobs.Store
	csvWriter   *export.CSVWriter
}

// NewContainer creates and wires all application dependencies.
// logger may be nil, in which case one is built from cfg.Log.
func NewContainer(cfg *config.Config, logger logging.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	if logger == nil {
		var err error
		logger, err = config.NewLogger(cfg)
		if err != nil {
			return nil, err
		}
	}

	rulesStore := store.NewRulesStore(cfg.Rules.File, logger)
	rules, err := rulesStore.LoadRules()
	if err != nil {
		return nil, fmt.Errorf("failed to load categorization rules: %w", err)
	}

	cat := categorizer.NewCategorizer(rules, logger)
	tr := transformer.NewTransformer(rules.Layout, logger)
	loader := parser.NewFileLoader(logger)
	proc := batch.NewProcessor(loader, cat, tr, logger)

	csvWriter := export.NewCSVWriter(logger)
	if d := []rune(cfg.Export.Delimiter); len(d) == 1 {
		csvWriter.Delimiter = d[0]
	}

	logger.Info("Container initialized successfully",
		logging.F("rules_file", cfg.Rules.File),
		logging.F(logging.FieldStream, cfg.Redis.StreamKey))

	return &Container{
		logger:      logger,
		config:      cfg,
		rules:       rules,
		categorizer: cat,
		transformer: tr,
		loader:      loader,
		processor:   proc,
		jobs:        jobs.NewStore(cfg.Status.MaxJobs),
		csvWriter:   csvWriter,
	}, nil
}

// NewWorker connects a stream client to the processor and job store.
// The caller owns the returned client and must close it.
func (c *Container) NewWorker() (*queue.Worker, queue.StreamClient, error) {
	client, err := queue.NewRedisStream(c.config.Redis.URL)
	if err != nil {
		return nil, nil, err
	}
	w := queue.NewWorker(client, c.processor, c.jobs, queue.WorkerConfig{
		Stream:   c.config.Redis.StreamKey,
		Group:    c.config.Redis.ConsumerGroup,
		Consumer: c.config.Redis.ConsumerName,
		Block:    c.config.Redis.Block(),
		Count:    int64(c.config.Redis.MessageCount),
	}, c.logger)
	return w, client, nil
}

// NewStatusServer returns a status server over the container's job store,
// or nil when no status address is configured.
func (c *Container) NewStatusServer() *status.Server {
	if c.config.Status.Addr == "" {
		return nil
	}
	return status.NewServer(c.config.Status.Addr, c.jobs, c.logger)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRules returns the loaded categorization rules.
func (c *Container) GetRules() *models.RulesConfig {
	return c.rules
}

// GetCategorizer returns the container's categorizer instance.
func (c *Container) GetCategorizer() *categorizer.Categorizer {
	return c.categorizer
}

// GetTransformer returns the container's transformer instance.
func (c *Container) GetTransformer() *transformer.Transformer {
	return c.transformer
}

// GetLoader returns the container's file loader.
func (c *Container) GetLoader() *parser.FileLoader {
	return c.loader
}

// GetProcessor returns the job processor.
func (c *Container) GetProcessor() *batch.Processor {
	return c.processor
}

// GetJobs returns the job status store.
func (c *Container) GetJobs() *jobs.Store {
	return c.jobs
}

// GetCSVWriter returns the CSV exporter.
func (c *Container) GetCSVWriter() *export.CSVWriter {
	return c.csvWriter
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Info("Container closed")
	return nil
}
