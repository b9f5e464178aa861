package parser

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"celemeter/internal/models"
)

const (
	// Marker opens a telemetry payload inside a log line
	Marker = ">23|01:"
	// Terminator ends the payload; end of line also ends it
	Terminator = '<'
	// Delimiter separates payload fields
	Delimiter = ","
)

// Extract scans content and returns one RawRecord per line carrying the
// marker, in document order. Lines end at \n, \r\n or a lone \r.
func Extract(content string) []models.RawRecord {
	records, _, _ := extract(strings.NewReader(content))
	return records
}

// ExtractReader is Extract over a stream, read line by line
func ExtractReader(r io.Reader) ([]models.RawRecord, error) {
	records, _, err := extract(r)
	return records, err
}

// extract returns the records and the number of lines scanned
func extract(r io.Reader) ([]models.RawRecord, int, error) {
	var records []models.RawRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	scanner.Split(scanLines)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		if rec, ok := extractLine(lineNum, scanner.Text()); ok {
			records = append(records, rec)
		}
	}

	return records, lineNum, scanner.Err()
}

// scanLines is bufio.ScanLines that also breaks on a lone \r
func scanLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i], nil
			}
			return i + 1, data[:i], nil
		}
		if atEOF {
			return i + 1, data[:i], nil
		}
		// \r at the buffer edge: wait to see whether \n follows
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// extractLine captures the payload after the first marker on a line.
// Anything after the terminator, further markers included, is ignored.
func extractLine(lineNum int, line string) (models.RawRecord, bool) {
	start := strings.Index(line, Marker)
	if start < 0 {
		return models.RawRecord{}, false
	}
	payload := line[start+len(Marker):]
	if end := strings.IndexByte(payload, Terminator); end >= 0 {
		payload = payload[:end]
	}
	return models.RawRecord{
		Line:   lineNum,
		Fields: strings.Split(payload, Delimiter),
	}, true
}
