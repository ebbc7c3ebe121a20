package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/incident"
)

// Incident lines look like
//
//	T1_TA01_TI2
//
// meaning: during shift T1 vehicle TA01 suffers a type-2 incident.
// The file carries no timestamps; the simulation fires each entry the
// first time the named shift opens. IncidentSpec carries the parsed
// fields so the caller can decide the occurrence time.
type IncidentSpec struct {
	Shift     incident.Shift
	VehicleID string
	Type      incident.IncidentType
}

// IncidentParser reads the incident scenario file format.
type IncidentParser struct {
	logger common.Logger
}

// NewIncidentParser creates a parser.
func NewIncidentParser(logger common.Logger) *IncidentParser {
	return &IncidentParser{logger: logger}
}

// Parse reads every well-formed incident line.
func (p *IncidentParser) Parse(r io.Reader) ([]IncidentSpec, error) {
	var specs []IncidentSpec

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		spec, err := parseIncidentLine(line)
		if err != nil {
			p.logger.Log("WARN", "skipping malformed incident line", map[string]interface{}{
				"line":  lineNo,
				"error": err.Error(),
			})
			continue
		}
		specs = append(specs, spec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading incident file: %w", err)
	}

	return specs, nil
}

func parseIncidentLine(line string) (IncidentSpec, error) {
	parts := strings.Split(line, "_")
	if len(parts) != 3 {
		return IncidentSpec{}, fmt.Errorf("line %q must have three '_'-separated fields", line)
	}

	shift, err := incident.ParseShift(parts[0])
	if err != nil {
		return IncidentSpec{}, err
	}
	typ, err := incident.ParseIncidentType(parts[2])
	if err != nil {
		return IncidentSpec{}, err
	}
	if parts[1] == "" {
		return IncidentSpec{}, fmt.Errorf("line %q has empty vehicle id", line)
	}

	return IncidentSpec{Shift: shift, VehicleID: parts[1], Type: typ}, nil
}
