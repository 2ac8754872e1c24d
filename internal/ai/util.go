package ai

import (
	"regexp"
	"strings"
)

var (
	thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
	fenceRe = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

func truncate(b []byte) string {
	if len(b) > 200 {
		return string(b[:200]) + "..."
	}
	return string(b)
}

// cleanReply removes reasoning blocks and a surrounding markdown code fence.
func cleanReply(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = thinkRe.ReplaceAllString(reply, "")
	reply = strings.TrimSpace(reply)

	if m := fenceRe.FindStringSubmatch(reply); m != nil {
		reply = strings.TrimSpace(m[1])
	}
	return reply
}
