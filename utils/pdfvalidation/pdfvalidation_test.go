package pdfvalidation

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF writes a minimal PDF with the given number of empty pages
func buildPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	buf.WriteString("%PDF-1.4\n")
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	kids := ""
	for i := 0; i < pages; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestValidatePDFBytes(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		limits  PDFLimits
		valid   bool
		pages   int
		errPart string
	}{
		{"three pages", buildPDF(3), NotesLimits, true, 3, ""},
		{"trailing garbage", append(buildPDF(2), []byte("garbage")...), NotesLimits, true, 2, ""},
		{"too many pages", buildPDF(3), PDFLimits{MaxFileSizeMB: 1, MaxPages: 2, DocumentTypeName: "notes"}, false, 3, "exceeds the maximum"},
		{"missing header", []byte("hello"), NotesLimits, false, 0, "missing PDF header"},
		{"oversized", buildPDF(1), PDFLimits{MaxFileSizeMB: 0, MaxPages: 10}, false, 0, "File size exceeds"},
		{"corrupt body", []byte("%PDF-1.4\nnot a pdf"), NotesLimits, false, 0, "Failed to read PDF"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidatePDFBytes(tt.content, tt.limits)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, result.Valid)
			assert.Equal(t, tt.pages, result.PageCount)
			if tt.errPart != "" {
				assert.Contains(t, result.Error, tt.errPart)
			}
		})
	}
}
