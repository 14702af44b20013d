// Package jsonlreader reads one Nostr event per line of JSONL from an
// io.Reader, the input format spam_cleaner reads on stdin (§6).
package jsonlreader

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/nostrtools/eventdeleter/internal/logger"
	"github.com/nostrtools/eventdeleter/pkg/model"
)

// ReadInto decodes each non-blank line of r as a model.Event and sends it on
// out, in line order, until EOF. A line that fails to parse is logged and
// skipped (§7: ParseError on input JSONL); it never stops the reader.
func ReadInto(r io.Reader, out chan<- *model.Event) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var event model.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			logger.Warn("jsonlreader: skipping unparseable line", "error", err)
			continue
		}

		out <- &event
	}

	if err := scanner.Err(); err != nil {
		logger.Warn("jsonlreader: stdin scan error", "error", err)
	}
}
