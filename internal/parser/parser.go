// Package parser turns host command arguments into core values.
package parser

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
)

// Parser converts raw command arguments. It holds no session state.
type Parser struct {
	logger *slog.Logger
}

// NewParser returns a parser that reports oddities to logger.
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// wholeNumber reads an integer that the host may have sent as 2 or 2.0.
func wholeNumber(n json.Number) (int64, error) {
	if v, err := n.Int64(); err == nil {
		return v, nil
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if math.Trunc(f) != f || f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("%s is not a whole number", n)
	}
	return int64(f), nil
}
