package updateinfo

import (
	"golang.org/x/xerrors"

	"github.com/aquasecurity/updateinfo-db/pkg/log"
	"github.com/aquasecurity/updateinfo-db/pkg/types"
	"github.com/aquasecurity/updateinfo-db/pkg/xmlevent"
)

// fieldDecoder consumes one direct child of an advisory element, the start event of which has
// just been read.
type fieldDecoder func(c *cursor, adv *Advisory) error

// Children not listed here are skipped.
var advisoryFields = map[string]fieldDecoder{
	"id": text(func(adv *Advisory, s string) error {
		adv.ID = s
		return nil
	}),
	"title": text(func(adv *Advisory, s string) error {
		adv.Title = s
		return nil
	}),
	"severity": text(func(adv *Advisory, s string) error {
		sev, err := types.NewSeverity(s)
		if err != nil {
			return xerrors.Errorf("invalid severity in advisory %q: %w", adv.ID, err)
		}
		adv.Severity = sev
		return nil
	}),
	"release": text(func(adv *Advisory, s string) error {
		adv.Release = s
		return nil
	}),
	"description": text(func(adv *Advisory, s string) error {
		adv.Description = s
		return nil
	}),
	"references": decodeReferences,
	"pkglist":    decodePackages,
}

// Package attributes not listed here are reported and dropped.
var packageAttrs = map[string]func(pkg *Package, v string){
	"name": func(pkg *Package, v string) { pkg.Name = v },
	"epoch": func(pkg *Package, v string) {
		if v != "" {
			pkg.Epoch = &v
		}
	},
	"version": func(pkg *Package, v string) { pkg.Version = v },
	"release": func(pkg *Package, v string) { pkg.Release = v },
	"arch":    func(pkg *Package, v string) { pkg.Arch = v },
}

func text(set func(adv *Advisory, s string) error) fieldDecoder {
	return func(c *cursor, adv *Advisory) error {
		s, err := c.nextCharacters()
		if err != nil {
			return err
		}
		return set(adv, s)
	}
}

// decodeAdvisory reads the children of the advisory element open at the current depth.
// On a stream error the fields read so far are returned along with the error.
func decodeAdvisory(c *cursor) (Advisory, error) {
	base := c.src.Depth()
	adv := Advisory{CVEs: []string{}, Packages: []Package{}}
	for {
		ev, ok, err := c.nextStart(base, 1)
		if err != nil {
			return adv, err
		} else if !ok {
			return adv, nil
		}

		decode, found := advisoryFields[ev.Name]
		if !found {
			continue
		}
		if err = decode(c, &adv); err != nil {
			return adv, err
		}
	}
}

// decodeReferences collects the id attribute of every element below <references>.
func decodeReferences(c *cursor, adv *Advisory) error {
	return c.within("references", func(ev xmlevent.Event) error {
		if id, ok := ev.Attr("id"); ok {
			adv.CVEs = append(adv.CVEs, id)
		}
		return nil
	})
}

// decodePackages collects every <package> below <pkglist>, at any nesting level.
func decodePackages(c *cursor, adv *Advisory) error {
	return c.within("pkglist", func(ev xmlevent.Event) error {
		if ev.Name != "package" {
			return nil
		}

		pkg := Package{Advisory: adv.ID}
		for _, attr := range ev.Attrs {
			set, ok := packageAttrs[attr.Name]
			if !ok {
				c.logger.Warn("Unknown package attribute", log.AdvisoryID(adv.ID),
					log.String("attribute", attr.Name), log.String("value", attr.Value))
				continue
			}
			set(&pkg, attr.Value)
		}

		file, err := c.nextCharacters()
		pkg.File = file
		adv.Packages = append(adv.Packages, pkg)
		return err
	})
}
