package updateinfo

import (
	"errors"
	"io"
	"strings"

	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/xmlevent"
)

// streamError marks a failure of the underlying event source as opposed to bad field data.
type streamError struct {
	err error
}

func (e *streamError) Error() string {
	return e.err.Error()
}

func (e *streamError) Unwrap() error {
	return e.err
}

// cursor is the single reader of the event source. Every decoder borrows it and hands it back
// once the element it was given has been fully consumed.
type cursor struct {
	src    xmlevent.Source
	logger *log.Logger
}

func (c *cursor) next() (xmlevent.Event, error) {
	ev, err := c.src.Next()
	if errors.Is(err, io.EOF) {
		return xmlevent.Event{Kind: xmlevent.EndDocument}, nil
	} else if err != nil {
		return xmlevent.Event{}, &streamError{err: err}
	}
	return ev, nil
}

// nextStart advances to the next start element nested between 1 and maxRel levels below the
// element open at depth base. It returns false once that element is closed or the document ends.
func (c *cursor) nextStart(base, maxRel int) (xmlevent.Event, bool, error) {
	for {
		ev, err := c.next()
		if err != nil {
			return xmlevent.Event{}, false, err
		}
		switch ev.Kind {
		case xmlevent.StartElement:
			if rel := c.src.Depth() - base; rel >= 1 && rel <= maxRel {
				return ev, true, nil
			}
		case xmlevent.EndElement:
			if c.src.Depth() < base {
				return xmlevent.Event{}, false, nil
			}
		case xmlevent.EndDocument:
			return xmlevent.Event{}, false, nil
		}
	}
}

// nextCharacters must be called right after a start element. It consumes the rest of that
// element and returns its text, skipping whitespace-only runs such as indentation.
func (c *cursor) nextCharacters() (string, error) {
	base := c.src.Depth()
	var sb strings.Builder
	for {
		ev, err := c.next()
		if err != nil {
			return sb.String(), err
		}
		switch ev.Kind {
		case xmlevent.CharData:
			if strings.TrimSpace(ev.Text) != "" {
				sb.WriteString(ev.Text)
			}
		case xmlevent.EndElement:
			if c.src.Depth() < base {
				return sb.String(), nil
			}
		case xmlevent.EndDocument:
			return sb.String(), nil
		}
	}
}

// within consumes the element opened at the current depth, passing every nested start element
// to fn. A stream error is logged and ends the walk; whatever fn collected so far is kept.
func (c *cursor) within(what string, fn func(ev xmlevent.Event) error) error {
	base := c.src.Depth()
	for c.src.Depth() >= base {
		ev, err := c.next()
		if err == nil && ev.Kind == xmlevent.StartElement {
			err = fn(ev)
		}

		if isStreamError(err) {
			c.logger.Warn("Stopped reading", log.Element(what), log.Err(err))
			return nil
		} else if err != nil {
			return err
		} else if ev.Kind == xmlevent.EndDocument {
			return nil
		}
	}
	return nil
}

func isStreamError(err error) bool {
	var se *streamError
	return errors.As(err, &se)
}
