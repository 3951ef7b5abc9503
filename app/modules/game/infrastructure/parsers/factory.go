package parsers

import (
	"fmt"
	"strings"
)

// Factory creates the appropriate parser based on file extension.
type Factory struct{}

// NewFactory creates a new parser factory.
func NewFactory() *Factory {
	return &Factory{}
}

// GetParser returns a parser for the given file name.
func (f *Factory) GetParser(fileName string) (Parser, error) {
	lower := strings.ToLower(strings.TrimSpace(fileName))

	switch {
	case strings.HasSuffix(lower, ".csv"):
		return NewCSVParser(), nil
	case strings.HasSuffix(lower, ".xlsx"):
		return NewXLSXParser(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, fileName)
	}
}
