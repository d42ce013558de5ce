package extract

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronoboard/backend/pkg/logger"
)

func newTestExtractor() *Extractor {
	return NewExtractor(logger.NewTestLogger())
}

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestExtract_TxtRoundTrip(t *testing.T) {
	e := newTestExtractor()

	content := "Project kickoff notes.\nBudget approved for Q3."
	text, err := e.Extract("notes.txt", []byte(content))
	assert.NoError(t, err)
	assert.Equal(t, content, text)
}

func TestExtract_TxtInvalidUTF8(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Extract("notes.txt", []byte{0xff, 0xfe, 0xfd})
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_UnsupportedExtension(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Extract("data.csv", []byte("a,b,c"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestExtract_ExtensionCaseInsensitive(t *testing.T) {
	e := newTestExtractor()

	text, err := e.Extract("README.TXT", []byte("hello"))
	assert.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestExtract_Docx(t *testing.T) {
	e := newTestExtractor()

	doc := buildDocx(t, `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>First paragraph.</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second </w:t></w:r><w:r><w:t>paragraph.</w:t></w:r></w:p>
    <w:p/>
  </w:body>
</w:document>`)

	text, err := e.Extract("report.docx", doc)
	assert.NoError(t, err)
	assert.Equal(t, "First paragraph.\nSecond paragraph.\n", text)
}

func TestExtract_DocxNotAZip(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Extract("report.docx", []byte("plainly not a zip archive"))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_DocxMissingDocumentXML(t *testing.T) {
	e := newTestExtractor()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/styles.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte("<styles/>"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, err = e.Extract("report.docx", buf.Bytes())
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestExtract_CorruptPDF(t *testing.T) {
	e := newTestExtractor()

	_, err := e.Extract("broken.pdf", []byte("%PDF-1.4 truncated garbage"))
	assert.ErrorIs(t, err, ErrExtraction)
}

func TestSupported(t *testing.T) {
	e := newTestExtractor()

	assert.True(t, e.Supported("a.pdf"))
	assert.True(t, e.Supported("a.DOCX"))
	assert.True(t, e.Supported("a.txt"))
	assert.False(t, e.Supported("a.csv"))
	assert.False(t, e.Supported("a"))
}
