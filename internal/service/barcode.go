package service

import (
	"fmt"
	"strings"

	"assettrack/internal/model"

	"github.com/google/uuid"
)

// NewBarcode generates a barcode for a manually created or imported record.
func NewBarcode(prefix string) string {
	if prefix == "" {
		prefix = "ACC"
	}
	return fmt.Sprintf("%s-%s", prefix, token())
}

// DerivedBarcode derives the barcode of a split-off record: source barcode,
// status suffix, and a uniqueness token so repeated splits of the same
// source/status pair never collide.
func DerivedBarcode(sourceBarcode string, status model.Status) string {
	return fmt.Sprintf("%s-%s-%s", sourceBarcode, status.Suffix(), token())
}

func token() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
