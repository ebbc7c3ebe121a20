package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
)

// Maintenance lines look like
//
//	20260401:TA01
//
// meaning: vehicle TA01 spends the whole of 2026-04-01 in the
// workshop. The window recurs every two months.
type MaintenanceParser struct {
	logger common.Logger
}

// NewMaintenanceParser creates a parser.
func NewMaintenanceParser(logger common.Logger) *MaintenanceParser {
	return &MaintenanceParser{logger: logger}
}

// Parse reads every well-formed maintenance line.
func (p *MaintenanceParser) Parse(r io.Reader) ([]*incident.Maintenance, error) {
	var windows []*incident.Maintenance

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		m, err := p.parseLine(line)
		if err != nil {
			p.logger.Log("WARN", "skipping malformed maintenance line", map[string]interface{}{
				"line":  lineNo,
				"error": err.Error(),
			})
			continue
		}
		windows = append(windows, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading maintenance file: %w", err)
	}

	return windows, nil
}

func (p *MaintenanceParser) parseLine(line string) (*incident.Maintenance, error) {
	parts := strings.SplitN(line, ":", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("line %q missing ':' separator", line)
	}

	date, err := time.Parse("20060102", strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, fmt.Errorf("bad date %q: %w", parts[0], err)
	}

	vehicleID := strings.TrimSpace(parts[1])
	if vehicleID == "" {
		return nil, fmt.Errorf("line %q has empty vehicle id", line)
	}

	return incident.NewMaintenance(vehicleID, date)
}
