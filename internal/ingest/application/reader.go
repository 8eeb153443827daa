package application

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	ingest "campus-energy/internal/ingest/domain"
)

var sniffDelimiters = []rune{',', ';', '\t', '|'}

// ReadTable reads a delimited table with a header row. Lines that cannot be
// parsed, or that carry more fields than the header, are skipped and counted.
// Short lines are kept as-is. A zero delimiter is sniffed from the header.
func ReadTable(source string, r io.Reader, delimiter rune) (ingest.RawTable, error) {
	table := ingest.RawTable{Source: source}

	buffered := bufio.NewReader(r)
	if delimiter == 0 {
		head, _ := buffered.Peek(4096)
		delimiter = SniffDelimiter(head)
	}

	reader := csv.NewReader(buffered)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return table, ingest.ErrEmptyFile
	}
	if err != nil {
		return table, fmt.Errorf("%w: %v", ingest.ErrUnreadableHeader, err)
	}
	table.Columns = header

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				table.Malformed++
				continue
			}
			return table, err
		}
		if len(record) > len(header) {
			table.Malformed++
			continue
		}
		table.Rows = append(table.Rows, record)
	}
	return table, nil
}

// SniffDelimiter picks the candidate delimiter that occurs most often on the
// first line, preferring a comma on ties or when none occur.
func SniffDelimiter(head []byte) rune {
	if idx := bytes.IndexByte(head, '\n'); idx >= 0 {
		head = head[:idx]
	}
	best := sniffDelimiters[0]
	bestCount := 0
	for _, candidate := range sniffDelimiters {
		count := bytes.Count(head, []byte(string(candidate)))
		if count > bestCount {
			best = candidate
			bestCount = count
		}
	}
	return best
}
