package natsgath

import (
	"strings"
)

const (
	maxMsgHeight = 20
	maxMsgWidth  = 200
)

// trimStrToRect caps diagnostic text to a height×width rectangle so one
// chatty checker cannot flood the message bus.
func trimStrToRect(s string, maxHeight int, maxWidth int) string {
	if s == "" {
		return ""
	}
	res := ""
	lines := strings.Split(s, "\n")
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
		lines = append(lines, "[...]")
	}
	for i, line := range lines {
		if i > 0 {
			res += "\n"
		}
		if len(line) > maxWidth {
			res += line[:maxWidth] + "[...]"
		} else {
			res += line
		}
	}
	return res
}
