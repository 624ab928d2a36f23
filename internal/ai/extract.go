package ai

import (
	"encoding/json"
	"strings"
)

// ExtractJSON leniently recovers a JSON document from a completion that was
// asked for bare JSON. Models decorate answers with markdown code fences
// often enough that two shapes are accepted:
//
//	(a) fenced: an opening ``` line (optionally with a language tag) and a
//	    closing ``` after the payload
//	(b) unfenced: the payload as-is
//
// Anything else is a parse failure, reported by ok=false together with the
// untouched raw text so the caller can surface it. Extraction never errors
// and is idempotent on already-clean JSON.
func ExtractJSON(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		nl := strings.IndexByte(s, '\n')
		if nl < 0 {
			return raw, false
		}
		body := s[nl+1:]
		end := strings.LastIndex(body, "```")
		if end < 0 {
			return raw, false
		}
		s = strings.TrimSpace(body[:end])
	}
	if !json.Valid([]byte(s)) {
		return raw, false
	}
	return s, true
}
