package convo

import (
	"regexp"
	"strings"
)

var (
	emotionRe = regexp.MustCompile(`(?i)\[emotion:\s*(\w+)\]`)
	labelRe   = regexp.MustCompile(`(?i)\[emotion:.*\]`)
)

// ParseEmotion splits a reply into the text to speak and its emotion
// label. The label is matched case-insensitively and stripped from the
// spoken text; replies without one are neutral.
func ParseEmotion(reply string) (text, emotion string) {
	emotion = "neutral"
	if m := emotionRe.FindStringSubmatch(reply); m != nil {
		emotion = strings.ToLower(m[1])
	}
	text = strings.TrimSpace(labelRe.ReplaceAllString(reply, ""))
	return text, emotion
}
