package export

import (
	"encoding/json"
	"io"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/samber/oops"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v2"

	"github.com/aquasecurity/updateinfo-db/pkg/updateinfo"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var Formats = []string{
	string(FormatJSON),
	string(FormatYAML),
	string(FormatTOML),
}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", oops.With("format", s).With("supported", Formats).Errorf("unsupported format")
}

// FormatFromPath guesses the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

func Encode(w io.Writer, format Format, db *updateinfo.Database) error {
	eb := oops.With("format", format)
	switch format {
	case FormatJSON:
		e := json.NewEncoder(w)
		e.SetIndent("", "  ")
		if err := e.Encode(db); err != nil {
			return eb.Wrapf(err, "json encode error")
		}
	case FormatYAML:
		b, err := yaml.Marshal(db)
		if err != nil {
			return eb.Wrapf(err, "yaml marshal error")
		}
		if _, err = w.Write(b); err != nil {
			return eb.Wrapf(err, "write error")
		}
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(db); err != nil {
			return eb.Wrapf(err, "toml encode error")
		}
	default:
		return eb.Errorf("unsupported format")
	}
	return nil
}

func Decode(r io.Reader, format Format) (*updateinfo.Database, error) {
	eb := oops.With("format", format)
	var db updateinfo.Database
	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&db); err != nil {
			return nil, eb.Wrapf(err, "json decode error")
		}
	case FormatYAML:
		b, err := io.ReadAll(r)
		if err != nil {
			return nil, eb.Wrapf(err, "read error")
		}
		if err = yaml.Unmarshal(b, &db); err != nil {
			return nil, eb.Wrapf(err, "yaml unmarshal error")
		}
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&db); err != nil {
			return nil, eb.Wrapf(err, "toml decode error")
		}
	default:
		return nil, eb.Errorf("unsupported format")
	}
	return &db, nil
}

// Fs writes and reads serialized databases on an afero filesystem.
type Fs struct {
	AppFs afero.Fs
}

func NewFs(appFs afero.Fs) Fs {
	return Fs{AppFs: appFs}
}

// Write creates parent directories as needed and replaces any existing file.
func (fs Fs) Write(path string, format Format, db *updateinfo.Database) error {
	eb := oops.With("file_path", path)
	if err := fs.AppFs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eb.Wrapf(err, "mkdir error")
	}

	f, err := fs.AppFs.Create(path)
	if err != nil {
		return eb.Wrapf(err, "file create error")
	}
	defer f.Close()

	if err = Encode(f, format, db); err != nil {
		return eb.Wrapf(err, "encode error")
	}
	return nil
}

func (fs Fs) Read(path string, format Format) (*updateinfo.Database, error) {
	eb := oops.With("file_path", path)
	f, err := fs.AppFs.Open(path)
	if err != nil {
		return nil, eb.Wrapf(err, "file open error")
	}
	defer f.Close()

	db, err := Decode(f, format)
	if err != nil {
		return nil, eb.Wrapf(err, "decode error")
	}
	return db, nil
}
