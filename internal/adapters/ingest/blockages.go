package ingest

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/network"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// Blockage lines look like
//
//	01d06h00m-01d15h00m:31,21,34,21,34,31
//
// meaning: from day 1 06:00 until day 1 15:00, the axis-aligned
// polyline (31,21)-(34,21)-(34,31) is closed.
type BlockageParser struct {
	logger common.Logger
}

// NewBlockageParser creates a parser.
func NewBlockageParser(logger common.Logger) *BlockageParser {
	return &BlockageParser{logger: logger}
}

// Parse reads every well-formed blockage line, anchored to month.
func (p *BlockageParser) Parse(r io.Reader, month time.Time) ([]*network.Blockage, error) {
	var blockages []*network.Blockage

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		b, err := p.parseLine(line, month)
		if err != nil {
			p.logger.Log("WARN", "skipping malformed blockage line", map[string]interface{}{
				"line":  lineNo,
				"error": err.Error(),
			})
			continue
		}
		blockages = append(blockages, b)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading blockage file: %w", err)
	}

	return blockages, nil
}

func (p *BlockageParser) parseLine(line string, month time.Time) (*network.Blockage, error) {
	windowAndCells := strings.SplitN(line, ":", 2)
	if len(windowAndCells) != 2 {
		return nil, fmt.Errorf("line %q missing ':' separator", line)
	}

	bounds := strings.SplitN(windowAndCells[0], "-", 2)
	if len(bounds) != 2 {
		return nil, fmt.Errorf("window %q missing '-' separator", windowAndCells[0])
	}
	start, err := parseDayTime(bounds[0], month)
	if err != nil {
		return nil, err
	}
	end, err := parseDayTime(bounds[1], month)
	if err != nil {
		return nil, err
	}

	coords := strings.Split(windowAndCells[1], ",")
	if len(coords) < 4 || len(coords)%2 != 0 {
		return nil, fmt.Errorf("polyline %q needs an even number of at least four coordinates", windowAndCells[1])
	}
	polyline := make([]shared.Position, 0, len(coords)/2)
	for i := 0; i < len(coords); i += 2 {
		x, errX := strconv.Atoi(strings.TrimSpace(coords[i]))
		y, errY := strconv.Atoi(strings.TrimSpace(coords[i+1]))
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("bad coordinate pair %q,%q", coords[i], coords[i+1])
		}
		pos, err := shared.NewPosition(x, y)
		if err != nil {
			return nil, err
		}
		polyline = append(polyline, pos)
	}

	return network.NewBlockage(utils.GenerateID("blockage"), start, end, polyline)
}

// parseDayTime parses "DDdHHhMMm" relative to month.
func parseDayTime(s string, month time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	var day, hour, minute int
	if _, err := fmt.Sscanf(s, "%dd%dh%dm", &day, &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("bad day-time %q: %w", s, err)
	}
	return offsetInMonth(month, day, hour, minute)
}
