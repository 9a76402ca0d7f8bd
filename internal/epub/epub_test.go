package epub

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
)

func sampleBook() (*index.Index, index.Contents) {
	ix := index.New()
	add := func(slug, title, date string) {
		ix.Metadata[slug] = index.Stub{Slug: slug, Title: title, ReleaseDate: date}
		ix.Order = append(ix.Order, slug)
	}
	add("chapter-0", "Prologue", "01/01/2024")
	add("chapter-1", "Chapter 1: Fall", "02/01/2024")
	add("chapter-2", "Chapter 2", "")
	add("chapter-807-808", "Chapter 807-808", "3 days ago")

	contents := index.Contents{
		"chapter-0":   {Title: "Prologue", Content: "<p>Before.</p>"},
		"chapter-1":   {Title: "", Content: "<p>Down & out.</p>"},
		"chapter-807": {Title: "Chapter 807: Door", Content: "<p>A</p>", SourceSlug: "chapter-807-808"},
		"chapter-808": {Title: "Chapter 808", Content: "<p>B</p>", SourceSlug: "chapter-807-808"},
	}

	return ix, contents
}

func TestAssemble(t *testing.T) {
	ix, contents := sampleBook()

	docs := Assemble(ix, contents, providers.WeTriedTLS())
	require.Len(t, docs, 4)

	var slugs []string
	for _, d := range docs {
		slugs = append(slugs, d.Slug)
	}
	assert.Equal(t, []string{"chapter-0", "chapter-1", "chapter-807", "chapter-808"}, slugs)

	assert.Equal(t, "Chapter 1: Fall", docs[1].Title)
	assert.Equal(t, "chapter-1.xhtml", docs[1].FileName)
	assert.Equal(t, `<h1>Chapter 1: Fall</h1><div class="date">Released: 02/01/2024</div><p>Down & out.</p>`, docs[1].Body)

	assert.Equal(t, "3 days ago", docs[2].ReleaseDate)
	assert.Equal(t, "3 days ago", docs[3].ReleaseDate)
	assert.Equal(t, "Chapter 807: Door", docs[2].Title)
}

func TestAssembleTitleFallsBackToSlug(t *testing.T) {
	ix := index.New()
	ix.Metadata["extra"] = index.Stub{Slug: "extra"}
	ix.Order = []string{"extra"}

	docs := Assemble(ix, index.Contents{"extra": {Content: "<p>x</p>"}}, providers.WeTriedTLS())
	require.Len(t, docs, 1)
	assert.Equal(t, "extra", docs[0].Title)
	assert.Equal(t, index.UnknownDate, docs[0].ReleaseDate)
}

func readZip(t *testing.T, data []byte) (*zip.Reader, map[string]string) {
	t.Helper()

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	files := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		files[f.Name] = string(b)
	}

	return zr, files
}

func TestEncode(t *testing.T) {
	ix, contents := sampleBook()
	site := providers.WeTriedTLS()
	docs := Assemble(ix, contents, site)

	w := NewWriter(site.Book, "", nil)
	w.Modified = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	var buf bytes.Buffer
	require.NoError(t, w.Encode(&buf, docs))

	zr, files := readZip(t, buf.Bytes())

	require.NotEmpty(t, zr.File)
	assert.Equal(t, "mimetype", zr.File[0].Name)
	assert.Equal(t, zip.Store, zr.File[0].Method)
	assert.Equal(t, "application/epub+zip", files["mimetype"])

	assert.Contains(t, files, "META-INF/container.xml")
	assert.Contains(t, files, "OEBPS/style/nav.css")
	assert.NotContains(t, files, "OEBPS/cover.xhtml")

	opf := files["OEBPS/content.opf"]
	assert.Contains(t, opf, `<dc:identifier id="pub-id">`+w.identifier()+`</dc:identifier>`)
	assert.Contains(t, opf, "<dc:title>A Regressor&#39;s Tale of Cultivation</dc:title>")
	assert.Contains(t, opf, "<dc:language>en</dc:language>")
	assert.Contains(t, opf, "엄청난 (Tremendous)")
	assert.Contains(t, opf, "<dc:description>On the way to a company workshop")
	assert.Contains(t, opf, "2024-05-01T12:00:00Z")

	spine := opf[strings.Index(opf, "<spine"):]
	order := []string{`idref="nav"`, `idref="ch_chapter-0"`, `idref="ch_chapter-1"`, `idref="ch_chapter-807"`, `idref="ch_chapter-808"`}
	last := -1
	for _, ref := range order {
		i := strings.Index(spine, ref)
		require.Greater(t, i, last, ref)
		last = i
	}

	ch := files["OEBPS/chapter-807.xhtml"]
	assert.Contains(t, ch, "<h1>Chapter 807: Door</h1>")
	assert.Contains(t, ch, `<div class="date">Released: 3 days ago</div><p>A</p>`)

	assert.Contains(t, files["OEBPS/nav.xhtml"], `<a href="chapter-808.xhtml">Chapter 808</a>`)
	assert.Contains(t, files["OEBPS/toc.ncx"], `<meta name="dtb:uid" content="`+w.identifier()+`"/>`)
}

func TestIdentifierFollowsSeries(t *testing.T) {
	book := providers.WeTriedTLS().Book
	require.NotEmpty(t, book.Source)

	id := NewWriter(book, "", nil).identifier()
	assert.True(t, strings.HasPrefix(id, "urn:uuid:"), id)
	assert.Equal(t, id, NewWriter(book, "", nil).identifier(), "same series, same id")

	other := book
	other.Source = "https://wetriedtls.com/series/another-series"
	assert.NotEqual(t, id, NewWriter(other, "", nil).identifier())

	pinned := book
	pinned.Identifier = "rtoc"
	assert.Equal(t, "rtoc", NewWriter(pinned, "", nil).identifier())
}

func TestEncodeGeneratesIdentifier(t *testing.T) {
	book := providers.WeTriedTLS().Book
	book.Source = ""

	w := NewWriter(book, "", nil)
	var buf bytes.Buffer
	require.NoError(t, w.Encode(&buf, nil))

	_, files := readZip(t, buf.Bytes())
	assert.Contains(t, files["OEBPS/content.opf"], "urn:uuid:")
	assert.Contains(t, files["OEBPS/toc.ncx"], w.identifier())
}

func TestWriteWithCover(t *testing.T) {
	dir := t.TempDir()
	coverPath := filepath.Join(dir, "cover.webp")
	require.NoError(t, os.WriteFile(coverPath, []byte("RIFF....WEBP"), 0644))

	ix, contents := sampleBook()
	site := providers.WeTriedTLS()

	out := filepath.Join(dir, "out", "book.epub")
	n, err := NewWriter(site.Book, coverPath, nil).Write(out, Assemble(ix, contents, site))
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.EqualValues(t, len(data), n)

	_, files := readZip(t, data)
	assert.Equal(t, "RIFF....WEBP", files["OEBPS/images/cover.webp"])
	assert.Contains(t, files, "OEBPS/cover.xhtml")
	assert.Contains(t, files["OEBPS/content.opf"], `properties="cover-image"`)
	assert.Contains(t, files["OEBPS/content.opf"], `media-type="image/webp"`)
}

func TestWriteSkipsUnusableCover(t *testing.T) {
	dir := t.TempDir()
	bmp := filepath.Join(dir, "cover.bmp")
	require.NoError(t, os.WriteFile(bmp, []byte("BM"), 0644))

	ix, contents := sampleBook()
	site := providers.WeTriedTLS()
	docs := Assemble(ix, contents, site)

	for _, coverPath := range []string{bmp, filepath.Join(dir, "missing.jpg")} {
		out := filepath.Join(dir, "b.epub")
		_, err := NewWriter(site.Book, coverPath, nil).Write(out, docs)
		require.NoError(t, err, coverPath)

		data, err := os.ReadFile(out)
		require.NoError(t, err)

		_, files := readZip(t, data)
		assert.NotContains(t, files, "OEBPS/cover.xhtml")
		assert.Contains(t, files, "OEBPS/chapter-807.xhtml")
	}
}
