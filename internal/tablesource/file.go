package tablesource

import (
	"context"
	"fmt"
	"os"

	"github.com/tradepostapp/tradepost/internal/pricing"
)

// FileLoader reads the rule tables from a single YAML file.
type FileLoader struct {
	path   string
	parser *pricing.Parser
}

func NewFileLoader(path string) *FileLoader {
	return &FileLoader{
		path:   path,
		parser: pricing.NewParser(),
	}
}

func (l *FileLoader) Load(ctx context.Context) (*pricing.Tables, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tables file %s: %w", l.path, err)
	}

	doc, err := l.parser.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("tables file %s: %w", l.path, err)
	}

	return pricing.NewTables(doc)
}

func (l *FileLoader) Close() error {
	return nil
}
