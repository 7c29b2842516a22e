package domain

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

// yearRe matches flow-table headers that name a year column.
var yearRe = regexp.MustCompile(`^\d{4}$`)

// ParseFlowTable decodes the CSV flow table into a FlowTable keyed by
// trimmed segment identifier. Malformed rows and rows without an
// identifier are logged and skipped; only an undecodable input fails.
// Duplicate identifiers overwrite (last row wins). Empty input yields an
// empty table.
func ParseFlowTable(data []byte, logger *slog.Logger) (FlowTable, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return FlowTable{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read flow table header: %w", err)
	}

	idCol := -1
	yearCols := make(map[int]string)
	for i, cell := range header {
		cell = strings.TrimSpace(cell)
		if idCol == -1 && isIdentifierHeader(cell) {
			idCol = i
			continue
		}
		if yearRe.MatchString(cell) {
			yearCols[i] = cell
		}
	}
	if idCol == -1 {
		logger.Warn("flow table has no identifier column", "header", strings.Join(header, ","))
		return FlowTable{}, nil
	}

	table := make(FlowTable)
	line := 1
	for {
		line++
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			logger.Warn("skipping malformed flow table row", "line", line, "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read flow table row: %w", err)
		}

		id := ""
		if idCol < len(rec) {
			id = strings.TrimSpace(rec[idCol])
		}
		if id == "" {
			logger.Warn("skipping flow table row without identifier", "line", line)
			continue
		}

		flows := make(Flows, len(yearCols))
		for i, year := range yearCols {
			if i < len(rec) {
				flows[year] = parseFloatOrZero(rec[i])
			} else {
				flows[year] = 0
			}
		}
		table[id] = flows
	}

	return table, nil
}

// isIdentifierHeader reports whether a header cell names the identifier
// column, using the same alias list probed against attribute bags.
func isIdentifierHeader(cell string) bool {
	for _, key := range IdentifierKeys {
		if strings.EqualFold(cell, key) {
			return true
		}
	}
	return false
}

// parseFloatOrZero parses a string as float64, returning 0 on failure.
func parseFloatOrZero(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
