// Copyright (c) 2025 Seraa Project
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
)

// =============================================================================
// SEGMENTS
// =============================================================================

// SegmentKind distinguishes prose from code within a message.
type SegmentKind int

const (
	// KindProse is ordinary text, rendered as markdown.
	KindProse SegmentKind = iota
	// KindCode is the body of a <CODE> tag.
	KindCode
)

// Segment is one contiguous piece of a message.
type Segment struct {
	Kind     SegmentKind
	Language string // set for code segments when the tag names one
	Content  string
}

// openTagRe matches the opening tag, with or without a language attribute.
var openTagRe = regexp.MustCompile(`<CODE(?:\s+language="([^"]*)")?\s*>`)

const closeTag = "</CODE>"

// ParseSegments splits a message into alternating prose and code segments.
// An unterminated <CODE> tag, which happens routinely while a response is
// still streaming, treats the rest of the message as code. Empty prose
// between adjacent tags is dropped.
func ParseSegments(text string) []Segment {
	var segments []Segment
	for {
		loc := openTagRe.FindStringSubmatchIndex(text)
		if loc == nil {
			break
		}

		if prose := text[:loc[0]]; strings.TrimSpace(prose) != "" {
			segments = append(segments, Segment{Kind: KindProse, Content: prose})
		}

		language := ""
		if loc[2] >= 0 {
			language = text[loc[2]:loc[3]]
		}
		rest := text[loc[1]:]

		end := strings.Index(rest, closeTag)
		if end < 0 {
			segments = append(segments, Segment{Kind: KindCode, Language: language, Content: rest})
			return segments
		}
		segments = append(segments, Segment{Kind: KindCode, Language: language, Content: rest[:end]})
		text = rest[end+len(closeTag):]
	}

	if strings.TrimSpace(text) != "" {
		segments = append(segments, Segment{Kind: KindProse, Content: text})
	}
	return segments
}
