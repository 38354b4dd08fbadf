package filename

import (
	"regexp"
	"strings"
	"testing"

	"github.com/joseph-ayodele/pdf-renamer/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var validName = regexp.MustCompile(`^[a-z0-9_-]{1,46}\.pdf$`)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"uppercase with space", "TEST FILE.PDF", "test_file.pdf"},
		{"symbols dropped", "test@#$%file.pdf", "testfile.pdf"},
		{"hyphens kept", "file-with-hyphens.pdf", "file-with-hyphens.pdf"},
		{"other extension replaced", "test file.txt", "test_file.pdf"},
		{"no extension", "invoice acme", "invoice_acme.pdf"},
		{"underscore runs collapse", "mixed@#$CASE__file.pdf", "mixedcase_file.pdf"},
		{"dots become separators", "q3.report.final.pdf", "q3_report_final.pdf"},
		{"leading and trailing separators", "  _-Report-_  ", "report.pdf"},
		{"truncated", "very_long_file_name_that_exceeds_the_maximum_length_limit.pdf", "very_long_file_name_that_exceeds_the_maximum_l.pdf"},
		{"truncation trims trailing separator", strings.Repeat("a", 45) + "_bbbb.pdf", strings.Repeat("a", 45) + ".pdf"},
		{"nothing usable", "@@@.pdf", "document.pdf"},
		{"non ascii dropped", "Résumé Été.pdf", "rsum_t.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, validName, got)
		})
	}
}

func TestSanitize_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\t\n"} {
		_, err := Sanitize(in)
		require.ErrorIs(t, err, common.ErrInvalidArgument)
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"TEST FILE.PDF",
		"test@#$%file.pdf",
		"Invoice 2024-03 ACME Corp.pdf",
		"___",
		".pdf",
		"a.b.c.d",
		strings.Repeat("Long Name ", 20),
		"contract_-_signed",
	}
	for _, in := range inputs {
		once, err := Sanitize(in)
		require.NoError(t, err)
		twice, err := Sanitize(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice, "input %q", in)
		assert.Regexp(t, validName, once)
	}
}

func TestStripIllegal(t *testing.T) {
	assert.Equal(t, "ab_c.pdf", StripIllegal("a<b>_c:\"/\\|?*.pdf"))
	assert.Equal(t, "tab", StripIllegal("t\ta\x00b"))
	assert.Equal(t, "plain.pdf", StripIllegal("plain.pdf"))
}

func TestWithPDFExtension(t *testing.T) {
	assert.Equal(t, "annual_report.pdf", WithPDFExtension("annual_report.pdf"))
	assert.Equal(t, "annual_report.pdf", WithPDFExtension("annual_report.txt"))
	assert.Equal(t, "annual_report.pdf", WithPDFExtension("annual_report"))
}
