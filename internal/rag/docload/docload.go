package docload

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/pkg/logger_i"
)

var logger = logger_i.NewLogger("Document Loader")

// Meta describes the origin of an extracted document.
type Meta struct {
	Name        string
	ContentType commonModels.DocType
}

// SupportedFormats lists the file extensions Load accepts.
func SupportedFormats() []string {
	return []string{"pdf", "docx", "doc", "txt"}
}

// Load extracts the raw text of the file at path. The declared name (the
// user-facing filename) decides the format; anything outside
// SupportedFormats fails with ErrUnsupportedFormat.
func Load(path string, declaredName string) (string, Meta, error) {
	docType := typeOf(declaredName)
	if docType == commonModels.ERR {
		return "", Meta{}, fmt.Errorf("%w: %q", ragerr.ErrUnsupportedFormat, filepath.Ext(declaredName))
	}

	meta := Meta{Name: declaredName, ContentType: docType}

	var text string
	var err error
	switch docType {
	case commonModels.PDF:
		text, err = extractPDF(path)
	default:
		text, err = extractCat(path)
	}
	if err != nil {
		logger.Error("extraction failed", "file", declaredName, "error", err)
		return "", Meta{}, err
	}
	return text, meta, nil
}

func typeOf(name string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".doc":
		return commonModels.DOCX
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}
