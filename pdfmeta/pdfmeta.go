// Package pdfmeta opens submission PDFs through metadata manifests.
//
// An extractor run next to the checker writes, for every PDF, a manifest
// named "<file>.meta.yaml" holding the document information dictionary
// and the first page's file attachments, each extracted to its own file:
//
//	author: alice
//	created: 2024-03-01T14:30:15Z
//	modified: 2024-03-01T14:30:17Z
//	info:
//	  DataCheckA: 8F1E...
//	attachments:
//	  - name: project.zip
//	    mime: application/zip
//	    size: 48213
//	    content: report.pdf.d/project.zip
//
// Content paths are relative to the manifest. The PDF itself is read only
// for its whole-file checksum.
package pdfmeta

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/passverify/passcheck"
)

// Suffix is appended to a PDF path to find its manifest.
const Suffix = ".meta.yaml"

// ErrNoContent is returned when an attachment has no extracted content.
var ErrNoContent = errors.New("attachment content not extracted")

// Manifest is the extracted metadata of one PDF.
type Manifest struct {
	Author      *string           `yaml:"author,omitempty"`
	Created     *time.Time        `yaml:"created,omitempty"`
	Modified    *time.Time        `yaml:"modified,omitempty"`
	Info        map[string]string `yaml:"info,omitempty"`
	Attachments []Attachment      `yaml:"attachments,omitempty"`
}

// Attachment describes one file attachment annotation.
type Attachment struct {
	Name    string `yaml:"name"`
	MIME    string `yaml:"mime"`
	Size    int64  `yaml:"size"`
	Content string `yaml:"content,omitempty"`
}

// ManifestPath returns the manifest path for the PDF at path.
func ManifestPath(path string) string {
	return path + Suffix
}

// ReadManifest parses the manifest stored at path.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &m, nil
}

// WriteManifest stores m at path.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Opener opens documents by reading their manifests.
type Opener struct{}

// Open implements passcheck.Opener.
func (Opener) Open(ctx context.Context, path string) (passcheck.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	mpath := ManifestPath(path)
	m, err := ReadManifest(mpath)
	if err != nil {
		return nil, err
	}

	return &document{
		path:     path,
		dir:      filepath.Dir(mpath),
		manifest: m,
	}, nil
}

type document struct {
	path     string
	dir      string
	manifest *Manifest
}

func (d *document) Name() string {
	return filepath.Base(d.path)
}

func (d *document) Metadata(key string) (string, bool) {
	v, ok := d.manifest.Info[key]
	return v, ok
}

func (d *document) Author() (string, bool) {
	if d.manifest.Author == nil {
		return "", false
	}
	return *d.manifest.Author, true
}

func (d *document) CreationDate() (time.Time, bool) {
	return optionalTime(d.manifest.Created)
}

func (d *document) ModDate() (time.Time, bool) {
	return optionalTime(d.manifest.Modified)
}

func (d *document) FirstPageAttachments() []passcheck.Attachment {
	out := make([]passcheck.Attachment, 0, len(d.manifest.Attachments))
	for _, a := range d.manifest.Attachments {
		out = append(out, passcheck.Attachment{
			Name:         a.Name,
			MIMEType:     a.MIME,
			DeclaredSize: a.Size,
			Open:         d.opener(a.Content),
		})
	}
	return out
}

func (d *document) opener(content string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		if content == "" {
			return nil, ErrNoContent
		}
		path := content
		if !filepath.IsAbs(path) {
			path = filepath.Join(d.dir, path)
		}
		return os.Open(path)
	}
}

func (d *document) Open() (io.ReadCloser, error) {
	return os.Open(d.path)
}

func (d *document) Close() error {
	return nil
}

func optionalTime(t *time.Time) (time.Time, bool) {
	if t == nil {
		return time.Time{}, false
	}
	return *t, true
}
