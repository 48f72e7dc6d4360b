package template_store

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ReferencePattern matches reference recordings inside the library directory.
const ReferencePattern = "*_*.wav"

const referenceExt = ".wav"

var ErrMalformedName = errors.New("template_store: malformed reference name")

// ParseName splits a reference file name of the form <label>_<index>.wav.
// The label is everything before the last underscore, so labels may contain
// underscores themselves ("lights_on_3.wav" is label "lights_on").
func ParseName(path string) (label, index string, err error) {
	base := filepath.Base(path)

	if !strings.HasSuffix(base, referenceExt) {
		return "", "", fmt.Errorf("%w: %q has no %s extension", ErrMalformedName, base, referenceExt)
	}

	stem := strings.TrimSuffix(base, referenceExt)

	cut := strings.LastIndexByte(stem, '_')
	if cut < 0 {
		return "", "", fmt.Errorf("%w: %q has no underscore", ErrMalformedName, base)
	}

	label, index = stem[:cut], stem[cut+1:]
	if label == "" || index == "" {
		return "", "", fmt.Errorf("%w: %q needs both a label and an index", ErrMalformedName, base)
	}

	return label, index, nil
}

// FileName builds the reference file name for label and index.
func FileName(label string, index int) string {
	return fmt.Sprintf("%s_%d%s", label, index, referenceExt)
}
