package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// nativeText reads the text layer of every page with a pure-Go parser.
// Pages that fail to decode are skipped and reported as warnings.
func nativeText(data []byte) (text string, pages int, warnings []string, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", 0, nil, fmt.Errorf("open pdf: %w", err)
	}

	pages = reader.NumPage()
	var b strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		t, perr := page.GetPlainText(nil)
		if perr != nil {
			warnings = append(warnings, fmt.Sprintf("page %d: %v", i, perr))
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(t)
	}
	return b.String(), pages, warnings, nil
}
