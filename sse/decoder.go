// Package sse decodes a Server-Sent-Events byte stream from the
// upstream chat surface into accumulated assistant text plus a session
// id. The decoder is stateless: decoding the same capture twice yields
// identical output.
package sse

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultRawLimit bounds the diagnostics list of raw events.
	DefaultRawLimit = 120
	// rawDataTruncate caps the data field kept per raw event. The
	// truncation applies to diagnostics only, never to the content
	// accumulation path.
	rawDataTruncate = 1000

	doneSentinel = "[DONE]"
)

// RawEvent is one captured {event, data} pair, data truncated.
type RawEvent struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Result is the decoded stream.
type Result struct {
	Content   string     `json:"content"`
	SessionID string     `json:"sessionId,omitempty"`
	Raw       []RawEvent `json:"raw,omitempty"`
}

type Option func(*decoder)

// WithRawLimit overrides the bound on captured raw events.
func WithRawLimit(n int) Option {
	return func(d *decoder) {
		if n >= 0 {
			d.rawLimit = n
		}
	}
}

type decoder struct {
	rawLimit int
}

// Decode consumes the reader until EOF and accumulates content. A
// malformed or partial frame never aborts the decode; only a transport
// read error does.
func Decode(r io.Reader, opts ...Option) (Result, error) {
	d := &decoder{rawLimit: DefaultRawLimit}
	for _, opt := range opts {
		opt(d)
	}

	text, err := readAllUTF8(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read event stream: %w", err)
	}

	var (
		result  Result
		content strings.Builder
		done    bool
	)
	for _, block := range splitEvents(text) {
		name, data, ok := parseEvent(block)
		if !ok {
			continue
		}
		if len(result.Raw) < d.rawLimit {
			result.Raw = append(result.Raw, RawEvent{Event: name, Data: truncate(data, rawDataTruncate)})
		}

		if strings.TrimSpace(data) == doneSentinel {
			done = true
			continue
		}
		p := classifyPayload(data)
		if p.sessionID != "" {
			result.SessionID = p.sessionID
		}
		if done {
			continue
		}
		switch p.kind {
		case payloadDelta:
			content.WriteString(p.text)
		case payloadFullMessage:
			content.WriteString(p.text)
		case payloadUnrecognized:
			// Skipped: non-JSON or an unknown shape.
		}
	}
	result.Content = strings.TrimSpace(content.String())
	return result, nil
}

// payloadKind tags the recognized payload shapes. Anything else is
// explicitly unrecognized rather than probed further.
type payloadKind int

const (
	payloadUnrecognized payloadKind = iota
	payloadDelta
	payloadFullMessage
)

type payload struct {
	kind      payloadKind
	text      string
	sessionID string
}

type framePayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	SessionID string `json:"sessionId"`
}

// classifyPayload parses one data payload. Delta fragments win over a
// full message within the same event; a full message is used only when
// no delta was present.
func classifyPayload(data string) payload {
	var frame framePayload
	if err := json.Unmarshal([]byte(data), &frame); err != nil {
		return payload{kind: payloadUnrecognized}
	}
	out := payload{kind: payloadUnrecognized, sessionID: strings.TrimSpace(frame.SessionID)}
	var full string
	for _, choice := range frame.Choices {
		if choice.Delta.Content != "" {
			out.kind = payloadDelta
			out.text += choice.Delta.Content
			continue
		}
		if choice.Message.Content != "" && full == "" {
			full = choice.Message.Content
		}
	}
	if out.kind == payloadUnrecognized && full != "" {
		out.kind = payloadFullMessage
		out.text = full
	}
	return out
}

// splitEvents breaks the decoded text on blank-line boundaries.
func splitEvents(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n\n")
}

// parseEvent extracts the event name (default "message") and the
// newline-joined data payload from one block.
func parseEvent(block string) (name, data string, ok bool) {
	name = "message"
	var dataLines []string
	for _, line := range strings.Split(block, "\n") {
		switch {
		case strings.HasPrefix(line, "event:"):
			if v := strings.TrimSpace(strings.TrimPrefix(line, "event:")); v != "" {
				name = v
			}
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if len(dataLines) == 0 {
		return "", "", false
	}
	return name, strings.Join(dataLines, "\n"), true
}

// readAllUTF8 drains the reader chunk by chunk, holding back a
// multi-byte rune split across chunk boundaries until its remaining
// bytes arrive.
func readAllUTF8(r io.Reader) (string, error) {
	var (
		out   strings.Builder
		carry []byte
		buf   = make([]byte, 4096)
	)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			carry = append(carry, buf[:n]...)
			complete := completePrefix(carry)
			out.Write(carry[:complete])
			carry = append(carry[:0], carry[complete:]...)
		}
		if err == io.EOF {
			// Whatever is left can no longer complete; keep it as-is.
			out.Write(carry)
			return out.String(), nil
		}
		if err != nil {
			return "", err
		}
	}
}

// completePrefix returns the length of the longest prefix of b that
// does not end inside a multi-byte UTF-8 sequence.
func completePrefix(b []byte) int {
	end := len(b)
	for back := 1; back <= utf8.UTFMax && back <= end; back++ {
		c := b[end-back]
		if c < 0x80 {
			// ASCII tail, nothing is split.
			return end
		}
		if c >= 0xC0 {
			// Start byte of a multi-byte sequence.
			if expectedLen(c) == back {
				return end
			}
			return end - back
		}
		// Continuation byte, keep scanning backwards.
	}
	return end
}

// expectedLen returns the byte length a UTF-8 sequence starting with c
// should have.
func expectedLen(c byte) int {
	switch {
	case c >= 0xF0:
		return 4
	case c >= 0xE0:
		return 3
	case c >= 0xC0:
		return 2
	default:
		return 1
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
