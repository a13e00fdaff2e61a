package metadata

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/afero"
)

const metadataFile = "metadata.json"

// Metadata describes a built database. The same value is kept inside the
// bolt file and in metadata.json next to it.
type Metadata struct {
	Version    int
	Source     string `json:",omitempty"` // base name of the updateinfo file
	Advisories int
	UpdatedAt  time.Time
}

// Client reads and writes metadata.json
type Client struct {
	fs       afero.Fs
	filePath string
}

// NewClient is the factory method for the metadata Client
func NewClient(fs afero.Fs, dbDir string) Client {
	return Client{
		fs:       fs,
		filePath: Path(dbDir),
	}
}

func Path(dbDir string) string {
	return filepath.Join(dbDir, metadataFile)
}

func (c Client) Get() (Metadata, error) {
	eb := oops.With("file_path", c.filePath)

	f, err := c.fs.Open(c.filePath)
	if err != nil {
		return Metadata{}, eb.Wrapf(err, "file open error")
	}
	defer f.Close()

	var metadata Metadata
	if err = json.NewDecoder(f).Decode(&metadata); err != nil {
		return Metadata{}, eb.Wrapf(err, "json decode error")
	}
	return metadata, nil
}

func (c Client) Update(meta Metadata) error {
	eb := oops.With("file_path", c.filePath)

	if err := c.fs.MkdirAll(filepath.Dir(c.filePath), 0o744); err != nil {
		return eb.Wrapf(err, "mkdir error")
	}

	f, err := c.fs.Create(c.filePath)
	if err != nil {
		return eb.Wrapf(err, "file create error")
	}
	defer f.Close()

	if err = json.NewEncoder(f).Encode(&meta); err != nil {
		return eb.Wrapf(err, "json encode error")
	}
	return nil
}

// Delete deletes the file of database metadata
func (c Client) Delete() error {
	if err := c.fs.Remove(c.filePath); err != nil {
		return oops.With("file_path", c.filePath).Wrapf(err, "file remove error")
	}
	return nil
}
