package util

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePDF = []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n")

type fakeDoc struct {
	pages   []string
	failAt  int
	visited []int
	closed  bool
}

func (d *fakeDoc) NumPage() int { return len(d.pages) }

func (d *fakeDoc) PageText(page int) (string, error) {
	d.visited = append(d.visited, page)
	if page == d.failAt {
		return "", errors.New("corrupt stream")
	}
	return d.pages[page-1], nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func openerFor(doc *fakeDoc) DocumentOpener {
	return func([]byte) (PageSource, error) { return doc, nil }
}

func TestExtractText_JoinsPagesInOrder(t *testing.T) {
	doc := &fakeDoc{pages: []string{
		"  Ada Lovelace\nAnalyst \n",
		"",
		"Skills:\n  Go\n\nSQL",
	}}
	ex := NewResumeExtractor(openerFor(doc), nil)

	text, err := ex.ExtractText(context.Background(), samplePDF)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace Analyst\n\n\n\nSkills: Go SQL", text)
	assert.Equal(t, []int{1, 2, 3}, doc.visited)
	assert.True(t, doc.closed)
}

func TestExtractText_ZeroPages(t *testing.T) {
	ex := NewResumeExtractor(openerFor(&fakeDoc{}), nil)
	text, err := ex.ExtractText(context.Background(), samplePDF)
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractText_RejectsNonPDF(t *testing.T) {
	doc := &fakeDoc{pages: []string{"x"}}
	ex := NewResumeExtractor(openerFor(doc), nil)

	_, err := ex.ExtractText(context.Background(), []byte("just some plain text, not a document"))
	var uf *UnsupportedFormatError
	require.ErrorAs(t, err, &uf)
	assert.Contains(t, uf.Detected, "text/plain")
	assert.Empty(t, doc.visited)
}

func TestExtractText_Unavailable(t *testing.T) {
	ex := NewResumeExtractor(nil, nil)
	_, err := ex.ExtractText(context.Background(), samplePDF)
	var ue *ExtractionUnavailableError
	assert.ErrorAs(t, err, &ue)
}

func TestExtractText_PageErrorPropagates(t *testing.T) {
	doc := &fakeDoc{pages: []string{"a", "b", "c"}, failAt: 2}
	ex := NewResumeExtractor(openerFor(doc), nil)

	_, err := ex.ExtractText(context.Background(), samplePDF)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, []int{1, 2}, doc.visited)
	assert.True(t, doc.closed)
}

func TestExtractText_OpenFailure(t *testing.T) {
	ex := NewResumeExtractor(func([]byte) (PageSource, error) {
		return nil, errors.New("bad xref")
	}, nil)
	_, err := ex.ExtractText(context.Background(), samplePDF)
	assert.ErrorContains(t, err, "open document")
}

func TestProcess_ProducesBothOutputs(t *testing.T) {
	ex := NewResumeExtractor(openerFor(&fakeDoc{pages: []string{"hello", "world"}}), nil)

	doc, err := ex.Process(context.Background(), samplePDF)
	require.NoError(t, err)
	assert.Equal(t, base64.StdEncoding.EncodeToString(samplePDF), doc.Base64)
	assert.Equal(t, "hello\n\nworld", doc.Text)
}

func TestProcess_ExtractionFailureDropsBase64(t *testing.T) {
	ex := NewResumeExtractor(openerFor(&fakeDoc{pages: []string{"a"}, failAt: 1}), nil)
	doc, err := ex.Process(context.Background(), samplePDF)
	require.Error(t, err)
	assert.Empty(t, doc.Base64)
}

func TestJoinFragments(t *testing.T) {
	assert.Equal(t, "a b c", joinFragments("a\n  b  \n\n c"))
	assert.Equal(t, "", joinFragments(" \n\n "))
}
