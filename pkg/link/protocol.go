package link

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/itohio/gocapm/pkg/record"
)

// DefaultBufferSize is the default size for the report channel buffer.
const DefaultBufferSize = 100

// Prompt prefixes as printed by the meter.
const (
	nominalPrompt   = "Enter the Capacitance"
	tolerancePrompt = "Enter the Error"
)

// ReportFields is the number of values on a telemetry line.
const ReportFields = record.Capacity + 1

// Report is one telemetry line from the meter.
type Report struct {
	Timestamp   time.Time
	Capacitance float64   // nF, 0 when there is no signal
	Records     []float64 // nF, every record slot; empty slots are 0
}

// PromptKind identifies what the meter asks for.
type PromptKind int

const (
	PromptNominal PromptKind = iota
	PromptTolerance
)

func (k PromptKind) String() string {
	if k == PromptTolerance {
		return "tolerance"
	}
	return "nominal"
}

// Prompt is a manual entry request printed by the meter.
type Prompt struct {
	Kind PromptKind
	Text string
}

// parseReport parses a telemetry line.
// Format: C,r0,r1,...,r29 (all in nF)
// Example: 185.482,1.500,0.000,...,0.000
func parseReport(line string) (Report, error) {
	parts := strings.Split(line, ",")
	if len(parts) != ReportFields {
		return Report{}, fmt.Errorf("invalid line format: expected %d comma-separated values, got %d", ReportFields, len(parts))
	}

	values := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Report{}, fmt.Errorf("invalid value %d: %w", i, err)
		}
		values[i] = v
	}

	return Report{
		Capacitance: values[0],
		Records:     values[1:],
	}, nil
}

// parsePrompt recognises the manual entry prompts.
func parsePrompt(line string) (Prompt, bool) {
	switch {
	case strings.HasPrefix(line, nominalPrompt):
		return Prompt{Kind: PromptNominal, Text: line}, true
	case strings.HasPrefix(line, tolerancePrompt):
		return Prompt{Kind: PromptTolerance, Text: line}, true
	}
	return Prompt{}, false
}

// isReport reports whether line starts like a telemetry report.
func isReport(line string) bool {
	return strings.Contains(line, ",") && strings.IndexByte("0123456789+-.", line[0]) >= 0
}

// scanTerminals splits on either line terminator so in-place status lines
// ending in a bare carriage return are separated too.
func scanTerminals(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// readLines routes meter output into reports and prompts until r fails or
// ctx is done. Lines that are neither are console chatter and are skipped.
func readLines(ctx context.Context, r io.Reader, reports chan<- Report, prompts chan<- Prompt) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readLines: %v", r)
		}
	}()

	scanner := bufio.NewScanner(r)
	scanner.Split(scanTerminals)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if p, ok := parsePrompt(line); ok {
			select {
			case prompts <- p:
			case <-ctx.Done():
				return
			}
			continue
		}

		if !isReport(line) {
			continue
		}

		report, err := parseReport(line)
		if err != nil {
			log.Printf("Failed to parse line '%s': %v", line, err)
			continue
		}
		report.Timestamp = time.Now()

		// Send report to channel (non-blocking)
		select {
		case reports <- report:
		case <-ctx.Done():
			return
		default:
			log.Printf("Reports channel full, dropping report")
		}
	}

	if err := scanner.Err(); err != nil && err != io.EOF && ctx.Err() == nil {
		log.Printf("Error reading from meter: %v", err)
	}
}
