// Package xmlevent turns an XML document into a forward-only stream of structural events and
// keeps track of how deeply nested the stream currently is.
package xmlevent

import (
	"encoding/xml"
	"io"

	"golang.org/x/xerrors"
)

type Kind int

const (
	StartElement Kind = iota + 1
	EndElement
	CharData
	EndDocument
)

func (k Kind) String() string {
	switch k {
	case StartElement:
		return "StartElement"
	case EndElement:
		return "EndElement"
	case CharData:
		return "CharData"
	case EndDocument:
		return "EndDocument"
	}
	return "Invalid"
}

type Attr struct {
	Name  string
	Value string
}

// Event is one step of the stream. Name and Attrs are set for element events, Text for CharData.
type Event struct {
	Kind  Kind
	Name  string
	Attrs []Attr
	Text  string
}

// Attr returns the value of the first attribute with the given local name.
func (e Event) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// Source is a pull-style event stream.
//
// Depth reports the number of open elements once the last returned event has been applied:
// the root start element is at depth 1 and its end element brings the depth back to 0.
type Source interface {
	Next() (Event, error)
	Depth() int
}

// Reader is a Source backed by encoding/xml. Comments, processing instructions and directives
// are dropped. After EndDocument, Next returns io.EOF. A tokenizer error is returned again by
// every following call.
type Reader struct {
	dec   *xml.Decoder
	depth int
	done  bool
	err   error
}

func NewReader(r io.Reader) *Reader {
	return &Reader{dec: xml.NewDecoder(r)}
}

func (r *Reader) Depth() int {
	return r.depth
}

func (r *Reader) Next() (Event, error) {
	if r.err != nil {
		return Event{}, r.err
	} else if r.done {
		return Event{}, io.EOF
	}

	for {
		tok, err := r.dec.Token()
		if err == io.EOF {
			r.done = true
			return Event{Kind: EndDocument}, nil
		} else if err != nil {
			line, col := r.dec.InputPos()
			r.err = xerrors.Errorf("xml token error at %d:%d: %w", line, col, err)
			return Event{}, r.err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			r.depth++
			ev := Event{
				Kind: StartElement,
				Name: t.Name.Local,
			}
			for _, a := range t.Attr {
				ev.Attrs = append(ev.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			return ev, nil
		case xml.EndElement:
			r.depth--
			return Event{Kind: EndElement, Name: t.Name.Local}, nil
		case xml.CharData:
			return Event{Kind: CharData, Text: string(t)}, nil
		}
	}
}
