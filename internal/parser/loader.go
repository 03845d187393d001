package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"fjacquet/portfolio-parser/internal/logging"
	"fjacquet/portfolio-parser/internal/models"
	"fjacquet/portfolio-parser/internal/parsererror"
)

// FileLoader resolves job files inside a directory and dispatches them to
// the parser for their format.
type FileLoader struct {
	parsers map[FileType]TableParser
	logger  logging.Logger
}

// NewFileLoader creates a FileLoader with the CSV, XLSX and XLS parsers.
func NewFileLoader(logger logging.Logger) *FileLoader {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	l := &FileLoader{parsers: map[FileType]TableParser{}, logger: logger}
	for _, ft := range []FileType{CSV, XLSX, XLS} {
		p, _ := GetParser(ft, logger)
		l.parsers[ft] = p
	}
	return l
}

// Load reads directory/filename. Every failure is a *parsererror.LoadError.
func (l *FileLoader) Load(ctx context.Context, directory, filename string) (*models.Table, error) {
	path := filepath.Join(directory, filename)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &parsererror.LoadError{File: filename, Err: parsererror.ErrFileNotFound}
		}
		return nil, &parsererror.LoadError{File: filename, Err: err}
	}
	if info.IsDir() {
		return nil, &parsererror.LoadError{File: filename, Err: parsererror.ErrFileNotFound}
	}

	fileType := DetectFileType(filename)
	p, ok := l.parsers[fileType]
	if !ok {
		return nil, &parsererror.LoadError{
			File: filename,
			Err:  &parsererror.InvalidFormatError{FilePath: filename, ExpectedFormat: SupportedExtensions},
		}
	}

	table, err := p.Parse(ctx, path)
	if err != nil {
		return nil, &parsererror.LoadError{File: filename, Err: err}
	}

	l.logger.Info("Loaded file",
		logging.Field{Key: logging.FieldFile, Value: filename},
		logging.Field{Key: "rows", Value: len(table.Rows)},
		logging.Field{Key: "columns", Value: len(table.Columns)})
	return table, nil
}
