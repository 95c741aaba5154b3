package passcheck_test

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/passverify/passcheck"
	"github.com/passverify/passcheck/pdfmeta"
)

// writeSubmission stores a stamped PDF manifest in dir, the way the
// submission client and the extractor leave it.
func writeSubmission(dir string, secret, zip []byte) (string, error) {
	date := time.Date(2024, time.March, 1, 14, 30, 15, 0, time.UTC)

	wrap, err := passcheck.SymmetricWrapper(secret)
	if err != nil {
		return "", err
	}
	info, err := passcheck.Stamp{
		Checksum:        passcheck.AttachmentChecksum(zip),
		Date:            date,
		Version:         "1.4",
		DueDate:         date.Add(24 * time.Hour),
		Author:          "alice",
		ApplicationName: passcheck.DefaultTrustedProducer,
		SubmissionDate:  date.Add(time.Minute),
	}.Seal(wrap)
	if err != nil {
		return "", err
	}

	pdf := filepath.Join(dir, "report.pdf")
	if err := os.WriteFile(pdf, []byte("%PDF-1.7"), 0o644); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, "project.zip"), zip, 0o644); err != nil {
		return "", err
	}

	author := "alice"
	modified := date.Add(2 * time.Second)
	err = pdfmeta.WriteManifest(pdfmeta.ManifestPath(pdf), &pdfmeta.Manifest{
		Author:   &author,
		Created:  &date,
		Modified: &modified,
		Info:     info,
		Attachments: []pdfmeta.Attachment{
			{Name: "project.zip", MIME: passcheck.ZipMIMEType, Size: int64(len(zip)), Content: "project.zip"},
		},
	})
	return pdf, err
}

func Example() {
	dir, err := os.MkdirTemp("", "passcheck-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	secret := []byte("an example master secret, 32 b!!")
	pdf, err := writeSubmission(dir, secret, []byte("PK\x03\x04 original"))
	if err != nil {
		log.Fatal(err)
	}

	mk, err := passcheck.NewSymmetricMasterKey(secret)
	if err != nil {
		log.Fatal(err)
	}
	checker, err := passcheck.New(
		passcheck.WithMasterKey(mk),
		passcheck.WithOpener(pdfmeta.Opener{}),
		passcheck.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		passcheck.WithWarner(passcheck.WarnerFunc(func(passcheck.Warning) {})),
	)
	if err != nil {
		log.Fatal(err)
	}

	rec, err := checker.Check(context.Background(), pdf)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rec.File, *rec.DecryptedAuthor, rec.Codes())

	// Swap the attachment for one of the same size.
	if err := os.WriteFile(filepath.Join(dir, "project.zip"), []byte("PK\x03\x04 modified"), 0o644); err != nil {
		log.Fatal(err)
	}
	rec, err = checker.Check(context.Background(), pdf)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(rec.File, rec.Codes())

	// Output:
	// report.pdf alice []
	// report.pdf [mismatched-checksum]
}
