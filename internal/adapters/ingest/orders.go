package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/andrescamacho/glp-fleet-go/internal/application/common"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/delivery"
	"github.com/andrescamacho/glp-fleet-go/internal/domain/shared"
	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

// Order lines look like
//
//	11d13h31m:45,43,c-167,9m3,36h
//
// meaning: on day 11 at 13:31 (relative to the file's month), client
// c-167 at cell (45,43) requests 9 m3 within 36 hours. Malformed lines
// are logged and skipped, never fatal.
var orderLineRe = regexp.MustCompile(`^(\d{1,2})d(\d{1,2})h(\d{1,2})m:(\d+),(\d+),([^,]+),(\d+(?:\.\d+)?)m3,(\d+(?:\.\d+)?)h$`)

// OrderParser reads the monthly order file format.
type OrderParser struct {
	logger common.Logger
}

// NewOrderParser creates a parser.
func NewOrderParser(logger common.Logger) *OrderParser {
	return &OrderParser{logger: logger}
}

// Parse reads every well-formed order line. month anchors the relative
// day offsets; it must be the first midnight of the file's month.
func (p *OrderParser) Parse(r io.Reader, month time.Time) ([]*delivery.Order, error) {
	var orders []*delivery.Order

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		order, err := p.parseLine(line, month)
		if err != nil {
			p.logger.Log("WARN", "skipping malformed order line", map[string]interface{}{
				"line":  lineNo,
				"error": err.Error(),
			})
			continue
		}
		orders = append(orders, order)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading order file: %w", err)
	}

	return orders, nil
}

func (p *OrderParser) parseLine(line string, month time.Time) (*delivery.Order, error) {
	m := orderLineRe.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("line %q does not match order format", line)
	}

	day, _ := strconv.Atoi(m[1])
	hour, _ := strconv.Atoi(m[2])
	minute, _ := strconv.Atoi(m[3])
	x, _ := strconv.Atoi(m[4])
	y, _ := strconv.Atoi(m[5])
	clientID := m[6]
	amountM3, _ := strconv.ParseFloat(m[7], 64)
	dueHours, _ := strconv.ParseFloat(m[8], 64)

	arrival, err := offsetInMonth(month, day, hour, minute)
	if err != nil {
		return nil, err
	}

	pos, err := shared.NewPosition(x, y)
	if err != nil {
		return nil, err
	}

	due := arrival.Add(time.Duration(dueHours * float64(time.Hour)))
	return delivery.NewOrder(utils.GenerateID("order"), clientID, arrival, due, amountM3, pos)
}

// offsetInMonth resolves a (day, hour, minute) offset inside month.
func offsetInMonth(month time.Time, day, hour, minute int) (time.Time, error) {
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("day %d out of range", day)
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("time %dh%dm out of range", hour, minute)
	}
	return time.Date(month.Year(), month.Month(), day, hour, minute, 0, 0, month.Location()), nil
}
