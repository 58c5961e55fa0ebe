package agent

import (
	"encoding/json"
	"strings"
)

// Event is one line of the agent's JSON event stream.
type Event struct {
	Type string `json:"type"`
	Part Part   `json:"part"`
}

// Part carries the payload of a textual-output event.
type Part struct {
	Text string `json:"text"`
}

// ExtractText concatenates the text content of every "text" event in
// stream order, with no separator. Malformed lines are skipped. Returns
// "" when the stream carries no textual events.
func ExtractText(stream string) string {
	var chunks []string
	for _, line := range strings.Split(stream, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var ev Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			continue
		}
		if ev.Type == "text" && ev.Part.Text != "" {
			chunks = append(chunks, ev.Part.Text)
		}
	}
	return strings.TrimSpace(strings.Join(chunks, ""))
}
