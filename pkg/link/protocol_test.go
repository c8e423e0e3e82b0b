package link

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reportLine(c string, records ...string) string {
	fields := []string{c}
	for i := range ReportFields - 1 {
		if i < len(records) {
			fields = append(fields, records[i])
		} else {
			fields = append(fields, "0.000")
		}
	}
	return strings.Join(fields, ",")
}

func TestParseReport(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    float64
		records []float64
		wantErr bool
	}{
		{
			name:    "valid line - empty log",
			line:    reportLine("185.482"),
			want:    185.482,
			records: nil,
		},
		{
			name:    "valid line - two records",
			line:    reportLine("10.000", "1.500", "-0.250"),
			want:    10,
			records: []float64{1.5, -0.25},
		},
		{
			name: "valid line - no signal",
			line: reportLine("0"),
			want: 0,
		},
		{
			name:    "too few values",
			line:    "1.0,2.0,3.0",
			wantErr: true,
		},
		{
			name:    "too many values",
			line:    reportLine("1.0") + ",0.0",
			wantErr: true,
		},
		{
			name:    "invalid capacitance",
			line:    reportLine("abc"),
			wantErr: true,
		},
		{
			name:    "invalid record",
			line:    reportLine("1.0", "x"),
			wantErr: true,
		},
		{
			name:    "empty field",
			line:    reportLine(""),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReport(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Capacitance)
			require.Len(t, got.Records, ReportFields-1)
			for i, r := range tt.records {
				assert.Equal(t, r, got.Records[i])
			}
			for _, r := range got.Records[len(tt.records):] {
				assert.Zero(t, r)
			}
		})
	}
}

func TestParsePrompt(t *testing.T) {
	p, ok := parsePrompt("Enter the Capacitance (nF):")
	require.True(t, ok)
	assert.Equal(t, PromptNominal, p.Kind)

	p, ok = parsePrompt("Enter the Error (%):")
	require.True(t, ok)
	assert.Equal(t, PromptTolerance, p.Kind)
	assert.Equal(t, "tolerance", p.Kind.String())

	_, ok = parsePrompt("Button 5 pressed")
	assert.False(t, ok)
}

func TestReadLines(t *testing.T) {
	input := "Capacitance meter\r\n" +
		"C=1.000nF, f=1.00Hz\r" +
		"C=1.000nF, f=1.00Hz\r" +
		reportLine("1.000", "2.000") + "\r\n" +
		"1,2,3\r\n" +
		"Enter the Capacitance (nF): \r\n" +
		reportLine("3.000")

	reports := make(chan Report, 10)
	prompts := make(chan Prompt, 10)
	readLines(context.Background(), strings.NewReader(input), reports, prompts)

	require.Len(t, reports, 2)
	r := <-reports
	assert.Equal(t, 1.0, r.Capacitance)
	assert.Equal(t, 2.0, r.Records[0])
	assert.False(t, r.Timestamp.IsZero())
	r = <-reports
	assert.Equal(t, 3.0, r.Capacitance, "unterminated last line is still delivered")

	require.Len(t, prompts, 1)
	assert.Equal(t, PromptNominal, (<-prompts).Kind)
}

func TestReadLines_DropsWhenFull(t *testing.T) {
	input := reportLine("1") + "\n" + reportLine("2") + "\n" + reportLine("3") + "\n"

	reports := make(chan Report, 1)
	done := make(chan struct{})
	go func() {
		readLines(context.Background(), strings.NewReader(input), reports, make(chan Prompt))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("readLines blocked on a full channel")
	}
	assert.Equal(t, 1.0, (<-reports).Capacitance)
}

func TestSerial_NotConnected(t *testing.T) {
	d := NewSerial("/dev/does-not-exist", 0, 0)
	assert.False(t, d.IsConnected())
	assert.Error(t, d.Answer("1"))
	assert.NoError(t, d.Close())
	assert.Error(t, d.Connect())
}
