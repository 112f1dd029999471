package youtube

import (
	"encoding/json"
	"fmt"
	"strings"

	"subman/internal/textutil"
)

type json3Document struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// ParseJSON3 flattens a json3 caption track into text with one caption event
// per line. Whitespace inside an event is collapsed and events that carry no
// text are dropped.
func ParseJSON3(data []byte) (string, error) {
	var doc json3Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parse json3: %w", err)
	}
	lines := make([]string, 0, len(doc.Events))
	for _, event := range doc.Events {
		var b strings.Builder
		for _, seg := range event.Segs {
			b.WriteString(seg.UTF8)
		}
		if line := textutil.NormalizeCaptionLine(b.String()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n"), nil
}
