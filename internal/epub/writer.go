package epub

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"
)

const stylesheet = `body {
  -webkit-hyphens: none;
  -moz-hyphens: none;
  hyphens: none;
}
p {
  margin-bottom: 1.5em;
  line-height: 1.5;
  text-indent: 0;
}
h1 { text-align: center; }
.date { text-align: center; font-style: italic; color: #666; margin-bottom: 2em; }
`

var coverMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// Writer produces EPUB 3 files for one book.
type Writer struct {
	Book providers.Book

	// CoverPath is an optional image file embedded as the cover. A cover
	// that cannot be used is left out with a warning.
	CoverPath string

	// Modified is written as dcterms:modified; zero means now.
	Modified time.Time

	id  string
	log *ui.Logger
}

func NewWriter(book providers.Book, coverPath string, log *ui.Logger) *Writer {
	if log == nil {
		log = ui.NewNopLogger()
	}

	return &Writer{Book: book, CoverPath: coverPath, log: log}
}

// Write encodes the book and replaces path with it. It returns the size
// of the written file.
func (w *Writer) Write(path string, docs []Document) (int64, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := w.Encode(&buf, docs); err != nil {
		return 0, err
	}

	if err := util.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
		return 0, fmt.Errorf("write %s: %w", path, err)
	}

	return int64(buf.Len()), nil
}

type entry struct {
	name string
	body string
}

type cover struct {
	file      string
	mediaType string
	data      []byte
}

// Encode writes the zip container to out.
func (w *Writer) Encode(out io.Writer, docs []Document) error {
	cv := w.loadCover()

	zw := zip.NewWriter(out)

	if err := writeMimetype(zw); err != nil {
		return err
	}

	files := []entry{
		{"META-INF/container.xml", containerXML},
		{"OEBPS/content.opf", w.packageDocument(docs, cv)},
		{"OEBPS/nav.xhtml", w.navDocument(docs)},
		{"OEBPS/toc.ncx", w.ncxDocument(docs)},
		{"OEBPS/style/nav.css", stylesheet},
	}
	if cv != nil {
		files = append(files, entry{"OEBPS/cover.xhtml", coverPage(w.Book.Title, cv)})
	}

	for _, f := range files {
		if err := writeEntry(zw, f.name, []byte(f.body)); err != nil {
			return err
		}
	}

	if cv != nil {
		if err := writeEntry(zw, "OEBPS/"+cv.file, cv.data); err != nil {
			return err
		}
	}

	for _, d := range docs {
		if err := writeEntry(zw, "OEBPS/"+d.FileName, []byte(chapterPage(d))); err != nil {
			return fmt.Errorf("chapter %s: %w", d.Slug, err)
		}
	}

	return zw.Close()
}

func (w *Writer) loadCover() *cover {
	if w.CoverPath == "" {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(w.CoverPath))
	mt, ok := coverMediaTypes[ext]
	if !ok {
		w.log.Warnf("Leaving out cover %s: unsupported type %q", w.CoverPath, ext)
		return nil
	}

	data, err := os.ReadFile(w.CoverPath)
	if err != nil {
		w.log.Warnf("Leaving out cover: %v", err)
		return nil
	}

	return &cover{file: "images/cover" + ext, mediaType: mt, data: data}
}

// identifier is stable for one Writer so the OPF and NCX agree. A book
// with a Source gets the same name-based UUID on every build.
func (w *Writer) identifier() string {
	if w.id != "" {
		return w.id
	}

	switch {
	case w.Book.Identifier != "":
		w.id = w.Book.Identifier
	case w.Book.Source != "":
		w.id = "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(w.Book.Source)).String()
	default:
		w.id = "urn:uuid:" + uuid.New().String()
	}

	return w.id
}

func (w *Writer) modified() string {
	t := w.Modified
	if t.IsZero() {
		t = time.Now()
	}

	return t.UTC().Format("2006-01-02T15:04:05Z")
}

func writeMimetype(zw *zip.Writer) error {
	// must be the first entry and stored uncompressed
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: "mimetype", Method: zip.Store})
	if err != nil {
		return fmt.Errorf("create mimetype: %w", err)
	}

	_, err = fw.Write([]byte("application/epub+zip"))
	return err
}

func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}

	_, err = fw.Write(data)
	return err
}
