package parser

import (
	"reflect"
	"strings"
	"testing"
	"testing/iotest"
)

func TestExtract(t *testing.T) {
	content := "noise line\n" +
		"prefix>23|01:a,b,c<tail\n" +
		">23|01: x , y \n" +
		">23|01:\n" +
		"trailing >23|01:1,2<>23|01:3,4<"

	records := Extract(content)

	want := [][]string{
		{"a", "b", "c"},
		{" x ", " y "},
		{""},
		{"1", "2"},
	}
	if len(records) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(records))
	}
	for i, rec := range records {
		if !reflect.DeepEqual(rec.Fields, want[i]) {
			t.Errorf("record %d: expected %q, got %q", i, want[i], rec.Fields)
		}
	}

	lines := []int{2, 3, 4, 5}
	for i, rec := range records {
		if rec.Line != lines[i] {
			t.Errorf("record %d: expected line %d, got %d", i, lines[i], rec.Line)
		}
	}
}

func TestExtractOneRecordPerLine(t *testing.T) {
	records := Extract(">23|01:t0,,,,,,,,,46.0,7.0,5<CRC>23|01:t1,,,,,,,,,47.0,8.0,9<")
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if records[0].Fields[0] != "t0" {
		t.Errorf("Expected the first payload on the line, got %q", records[0].Fields)
	}
}

func TestExtractStopsAtFirstTerminator(t *testing.T) {
	records := Extract(">23|01:a,b<c,d<e")
	if len(records) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(records))
	}
	if !reflect.DeepEqual(records[0].Fields, []string{"a", "b"}) {
		t.Errorf("Expected [a b], got %q", records[0].Fields)
	}
}

func TestExtractLineBreaks(t *testing.T) {
	tests := []struct {
		name    string
		content string
		lines   []int
	}{
		{"lone cr", ">23|01:a,b\r>23|01:c,d", []int{1, 2}},
		{"crlf", ">23|01:a,b\r\n>23|01:c,d\r\n", []int{1, 2}},
		{"blank crlf lines", "\r\n\r\n>23|01:a,b\r>23|01:c,d", []int{3, 4}},
		{"mixed", ">23|01:a,b\n\r>23|01:c,d", []int{1, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := Extract(tt.content)
			if len(records) != 2 {
				t.Fatalf("Expected 2 records, got %d: %q", len(records), records)
			}
			if !reflect.DeepEqual(records[0].Fields, []string{"a", "b"}) || !reflect.DeepEqual(records[1].Fields, []string{"c", "d"}) {
				t.Errorf("Unexpected fields %q", records)
			}
			for i, rec := range records {
				if rec.Line != tt.lines[i] {
					t.Errorf("record %d: expected line %d, got %d", i, tt.lines[i], rec.Line)
				}
			}
		})
	}
}

func TestExtractReaderMatchesExtract(t *testing.T) {
	content := "x\r\n>23|01:ts,,,,,,,,,1,2,3<y\r>23|01:ts,,,,,,,,,4,5\r\n"

	// one byte at a time puts every \r at the buffer edge
	fromReader, err := ExtractReader(iotest.OneByteReader(strings.NewReader(content)))
	if err != nil {
		t.Fatalf("ExtractReader failed: %v", err)
	}
	fromString := Extract(content)

	if !reflect.DeepEqual(fromReader, fromString) {
		t.Errorf("Expected reader and string extraction to agree:\n%v\n%v", fromReader, fromString)
	}
	if len(fromString) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(fromString))
	}
	if got := fromString[1].Fields[len(fromString[1].Fields)-1]; got != "5" {
		t.Errorf("Expected carriage return stripped, got %q", got)
	}
}

func TestExtractCountsLines(t *testing.T) {
	_, lines, err := extract(strings.NewReader("a\r\nb\rc\n\n>23|01:1,2\n"))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if lines != 5 {
		t.Errorf("Expected 5 lines, got %d", lines)
	}
}
