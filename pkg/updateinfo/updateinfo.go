// Package updateinfo decodes vendor updateinfo.xml security feeds into a Database in a single
// streaming pass.
//
// The expected layout is
//
//	<updates>
//	  <update>
//	    <id/> <title/> <severity/> <release/> <description/>
//	    <references><reference id="CVE-..."/></references>
//	    <pkglist><collection><package name="" epoch="" version="" release="" arch="">
//	      <filename/>
//	    </package></collection></pkglist>
//	  </update>
//	</updates>
//
// Unknown elements are skipped. A broken stream inside <references> or <pkglist> keeps what was
// read so far unless Strict is given. An unparsable severity fails the whole load.
package updateinfo

import (
	"io"
	"os"

	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/xmlevent"
)

// advisoryDepth is the depth at which each advisory element opens: one level below the root.
const advisoryDepth = 2

type options struct {
	strict bool
}

type Option func(*options)

// Strict makes a broken stream, or a document without a root element, fail the load instead of
// returning the advisories read so far.
func Strict() Option {
	return func(o *options) {
		o.strict = true
	}
}

// Load reads the updateinfo document at path.
func Load(path string, opts ...Option) (*Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("failed to open updateinfo: %w", err)
	}
	defer f.Close()

	db, err := Parse(f, opts...)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse %s: %w", path, err)
	}
	return db, nil
}

func Parse(r io.Reader, opts ...Option) (*Database, error) {
	return Decode(xmlevent.NewReader(r), opts...)
}

// Decode drains src and returns the advisories found at depth 2, in document order.
func Decode(src xmlevent.Source, opts ...Option) (*Database, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	c := &cursor{
		src:    src,
		logger: log.WithPrefix("updateinfo"),
	}

	db := &Database{}
	var root bool
	for {
		ev, err := c.next()
		if isStreamError(err) {
			return c.stopped(db, o.strict, err)
		} else if err != nil {
			return nil, err
		}

		switch {
		case ev.Kind == xmlevent.EndDocument:
			if o.strict && !root {
				return nil, xerrors.New("no root element")
			}
			return db, nil
		case ev.Kind == xmlevent.StartElement && src.Depth() == 1:
			root = true
		case ev.Kind == xmlevent.StartElement && src.Depth() == advisoryDepth:
			adv, err := decodeAdvisory(c)
			if isStreamError(err) {
				db.Advisories = append(db.Advisories, adv)
				return c.stopped(db, o.strict, err)
			} else if err != nil {
				return nil, xerrors.Errorf("advisory decode error: %w", err)
			}
			db.Advisories = append(db.Advisories, adv)
		}
	}
}

func (c *cursor) stopped(db *Database, strict bool, err error) (*Database, error) {
	if strict {
		return nil, xerrors.Errorf("broken updateinfo after %d advisories: %w", db.Len(), err)
	}
	c.logger.Warn("Stopped reading updateinfo", log.Int("advisories", db.Len()), log.Err(err))
	return db, nil
}
