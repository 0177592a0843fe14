// Package container provides dependency injection for the register application.
// It centralizes the creation and wiring of all application dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"fmt"
	"sync"

	"github.com/Jeremy009/BMC/internal/analysis"
	"github.com/Jeremy009/BMC/internal/catalog"
	"github.com/Jeremy009/BMC/internal/config"
	"github.com/Jeremy009/BMC/internal/logging"
	"github.com/Jeremy009/BMC/internal/register"
	"github.com/Jeremy009/BMC/internal/report"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation. The catalog is loaded on first use
// so that commands which never sell (expected, analyze) work without one.
type Container struct {
	logger   logging.Logger
	config   *config.Config
	loader   *catalog.Loader
	writer   *report.Writer
	reader   *report.Reader
	analyzer *analysis.Analyzer

	catalogOnce sync.Once
	catalog     *catalog.Catalog
	catalogErr  error
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := config.ConfigureLoggingFromConfig(cfg)

	return newContainer(cfg, logger), nil
}

func newContainer(cfg *config.Config, logger logging.Logger) *Container {
	delimiter := cfg.DelimiterRune()
	reader := report.NewReader(delimiter)

	c := &Container{
		logger:   logger,
		config:   cfg,
		loader:   catalog.NewLoader(cfg.Catalog.File, cfg.Catalog.ProductsDB, logger),
		writer:   report.NewWriter(delimiter, logger),
		reader:   reader,
		analyzer: analysis.NewAnalyzer(reader, logger),
	}
	logger.Debug("Container initialized",
		logging.F(logging.FieldCatalogFile, cfg.Catalog.File),
		logging.F(logging.FieldDirectory, cfg.Register.ReportsDir))
	return c
}

// GetCatalog loads the pricing catalog once and returns it.
func (c *Container) GetCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c.catalogOnce.Do(func() {
		c.catalog, c.catalogErr = c.loader.Load(ctx)
	})
	return c.catalog, c.catalogErr
}

// NewRegisterService builds a register service selling from the catalog.
// The configuration must name at least one supervisor.
func (c *Container) NewRegisterService(ctx context.Context) (*register.Service, error) {
	if err := c.config.ValidateSession(); err != nil {
		return nil, err
	}
	cat, err := c.GetCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return register.NewService(cat, c.writer, c.reader, register.Options{
		ReportsDir:      c.config.Register.ReportsDir,
		Supervisors:     c.config.Register.Supervisors,
		ReductionFactor: c.config.ReductionFactor(),
		CurrencySymbol:  c.config.Register.CurrencySymbol,
	}, c.logger)
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetReportWriter returns the report writer.
func (c *Container) GetReportWriter() *report.Writer {
	return c.writer
}

// GetReportReader returns the report reader.
func (c *Container) GetReportReader() *report.Reader {
	return c.reader
}

// GetAnalyzer returns the period analyzer.
func (c *Container) GetAnalyzer() *analysis.Analyzer {
	return c.analyzer
}

// Close performs cleanup of container resources.
func (c *Container) Close() error {
	c.logger.Debug("Container closed")
	return nil
}
