package validation

import (
	"fmt"
	"net/http"
	"strings"
)

// MaxImageSize is the largest image the backend accepts
const MaxImageSize = 10 << 20

// AllowedImageTypes are the content types accepted for label and card photos
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// DetectImageType sniffs the content type of data
func DetectImageType(data []byte) string {
	ct := http.DetectContentType(data)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// ValidateImage checks that data is a jpeg, png or webp image no larger than MaxImageSize.
// It returns the detected content type.
func ValidateImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty")
	}
	if len(data) > MaxImageSize {
		return "", fmt.Errorf("image must not exceed %d MB", MaxImageSize>>20)
	}

	ct := DetectImageType(data)
	for _, allowed := range AllowedImageTypes {
		if ct == allowed {
			return ct, nil
		}
	}
	return "", fmt.Errorf("unsupported image type %q, use jpeg, png or webp", ct)
}
