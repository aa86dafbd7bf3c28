package report

import (
	"regexp"
)

var sizeCodePattern = regexp.MustCompile(`^([A-Za-zÁÉÍÓÚáéíóúÑñ0-9]+(?: [A-Za-zÁÉÍÓÚáéíóúÑñ0-9]+)*)\s*\d{3}[Xx]\d{3}`)

// CommonName strips a size-code suffix from a product description. Text
// without a size code is returned unchanged.
func CommonName(text string) string {
	m := sizeCodePattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return m[1]
}
