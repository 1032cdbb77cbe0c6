package sse

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// maxLineSize bounds a single SSE line.
const maxLineSize = 1024 * 1024

// Reader parses SSE events from a byte stream.
//
// Comment lines are not part of any event; they are passed to the optional
// comment callback as they are read.
type Reader struct {
	scanner   *bufio.Scanner
	onComment func(string)

	// current accumulates fields for the event being built.
	current   *Event
	hasData   bool
	dataLines int

	// retry is the last "retry:" value in milliseconds, 0 if none was seen.
	retry int
}

// NewReader returns a Reader that parses SSE events from src. onComment may
// be nil.
func NewReader(src io.Reader, onComment func(string)) *Reader {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	return &Reader{
		scanner:   scanner,
		onComment: onComment,
		current:   &Event{},
	}
}

// Next returns the next parsed SSE event. It blocks until a complete event
// is available (terminated by a blank line). Next returns nil, nil when the
// source is exhausted.
func (r *Reader) Next() (*Event, error) {
	for r.scanner.Scan() {
		raw := strings.TrimSuffix(r.scanner.Text(), "\r")

		// A blank line dispatches the current event.
		if raw == "" {
			if r.hasData {
				ev := r.current
				r.reset()
				return ev, nil
			}
			continue
		}

		if comment, ok := strings.CutPrefix(raw, ":"); ok {
			if r.onComment != nil {
				r.onComment(strings.TrimPrefix(comment, " "))
			}
			continue
		}

		r.parseLine(raw)
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// Source exhausted. A trailing event without a blank line is still
	// dispatched.
	if r.hasData {
		ev := r.current
		r.reset()
		return ev, nil
	}

	return nil, nil
}

// parseLine accumulates one "field:value" line into the current event.
// The first space after the colon is stripped.
func (r *Reader) parseLine(line string) {
	field, value, ok := strings.Cut(line, ":")
	if ok {
		value = strings.TrimPrefix(value, " ")
	} else {
		field = line
	}

	switch field {
	case "data":
		if r.dataLines > 0 {
			r.current.Data += "\n"
		}
		r.current.Data += value
		r.dataLines++
		r.hasData = true
	case "event":
		r.current.Type = value
		r.hasData = true
	case "id":
		r.current.ID = value
		r.hasData = true
	case "retry":
		if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
			r.retry = ms
		}
	default:
		// Unknown fields are ignored per the SSE spec.
	}
}

// Retry returns the last reconnection time sent by the server, in
// milliseconds, or 0 if none was sent.
func (r *Reader) Retry() int {
	return r.retry
}

func (r *Reader) reset() {
	r.current = &Event{}
	r.hasData = false
	r.dataLines = 0
}
