package proconapi

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ArchiveCaseDocuments bundles every document of the given case into a zip
// archive. Entries are placed under a documentos/ folder by base filename;
// when two documents share a base filename the later one wins. Documents
// whose blob is missing on disk are skipped with a warning instead of
// failing the whole archive.
func (a *ProconAPI) ArchiveCaseDocuments(caseID uint) ([]byte, error) {
	docs, err := a.storages.Documents.List(caseID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, d := range docs {
		name := path.Join("documentos", path.Base(d.Arquivo))
		src, err := os.Open(a.blobs.Abs(d.Arquivo))
		if err != nil {
			if os.IsNotExist(err) {
				log.WithField("arquivo", d.Arquivo).Warn("archive: document blob missing, skipping")
				continue
			}
			return nil, errors.Wrap(err, "archive: failed to open document blob")
		}
		dst, err := zw.Create(name)
		if err != nil {
			src.Close()
			return nil, errors.Wrap(err, "archive: failed to add zip entry")
		}
		if _, err = io.Copy(dst, src); err != nil {
			src.Close()
			return nil, errors.Wrap(err, "archive: failed to write zip entry")
		}
		src.Close()
	}
	if err = zw.Close(); err != nil {
		return nil, errors.Wrap(err, "archive: failed to finalize zip")
	}
	return buf.Bytes(), nil
}
