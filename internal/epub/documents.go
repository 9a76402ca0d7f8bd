package epub

import (
	"fmt"
	"html"
	"strings"
)

const containerXML = `<?xml version="1.0" encoding="UTF-8"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>
`

func esc(s string) string {
	return html.EscapeString(s)
}

func (w *Writer) packageDocument(docs []Document, cv *cover) string {
	var sb strings.Builder

	lang := w.Book.Language
	if lang == "" {
		lang = "en"
	}

	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<package xmlns="http://www.idpf.org/2007/opf" version="3.0" unique-identifier="pub-id">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
`)
	fmt.Fprintf(&sb, "    <dc:identifier id=\"pub-id\">%s</dc:identifier>\n", esc(w.identifier()))
	fmt.Fprintf(&sb, "    <dc:title>%s</dc:title>\n", esc(w.Book.Title))
	fmt.Fprintf(&sb, "    <dc:language>%s</dc:language>\n", esc(lang))
	if w.Book.Author != "" {
		fmt.Fprintf(&sb, "    <dc:creator id=\"creator\">%s</dc:creator>\n", esc(w.Book.Author))
	}
	if w.Book.Description != "" {
		fmt.Fprintf(&sb, "    <dc:description>%s</dc:description>\n", esc(w.Book.Description))
	}
	if cv != nil {
		sb.WriteString("    <meta name=\"cover\" content=\"cover-img\"/>\n")
	}
	fmt.Fprintf(&sb, "    <meta property=\"dcterms:modified\">%s</meta>\n", w.modified())
	sb.WriteString("  </metadata>\n\n")

	sb.WriteString("  <manifest>\n")
	sb.WriteString("    <item id=\"nav\" href=\"nav.xhtml\" media-type=\"application/xhtml+xml\" properties=\"nav\"/>\n")
	sb.WriteString("    <item id=\"ncx\" href=\"toc.ncx\" media-type=\"application/x-dtbncx+xml\"/>\n")
	sb.WriteString("    <item id=\"style_nav\" href=\"style/nav.css\" media-type=\"text/css\"/>\n")
	if cv != nil {
		fmt.Fprintf(&sb, "    <item id=\"cover-img\" href=\"%s\" media-type=\"%s\" properties=\"cover-image\"/>\n", cv.file, cv.mediaType)
		sb.WriteString("    <item id=\"cover\" href=\"cover.xhtml\" media-type=\"application/xhtml+xml\"/>\n")
	}
	for _, d := range docs {
		fmt.Fprintf(&sb, "    <item id=\"%s\" href=\"%s\" media-type=\"application/xhtml+xml\"/>\n", d.ID, esc(d.FileName))
	}
	sb.WriteString("  </manifest>\n\n")

	sb.WriteString("  <spine toc=\"ncx\">\n")
	if cv != nil {
		sb.WriteString("    <itemref idref=\"cover\" linear=\"no\"/>\n")
	}
	sb.WriteString("    <itemref idref=\"nav\"/>\n")
	for _, d := range docs {
		fmt.Fprintf(&sb, "    <itemref idref=\"%s\"/>\n", d.ID)
	}
	sb.WriteString("  </spine>\n")
	sb.WriteString("</package>\n")

	return sb.String()
}

func (w *Writer) navDocument(docs []Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" xmlns:epub="http://www.idpf.org/2007/ops">
<head>
  <title>%s</title>
</head>
<body>
  <nav epub:type="toc" id="toc">
    <h1>%s</h1>
    <ol>
`, esc(w.Book.Title), esc(w.Book.Title))

	for _, d := range docs {
		fmt.Fprintf(&sb, "      <li><a href=\"%s\">%s</a></li>\n", esc(d.FileName), esc(d.Title))
	}

	sb.WriteString(`    </ol>
  </nav>
</body>
</html>
`)

	return sb.String()
}

func (w *Writer) ncxDocument(docs []Document) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<ncx xmlns="http://www.daisy.org/z3986/2005/ncx/" version="2005-1">
  <head>
    <meta name="dtb:uid" content="%s"/>
    <meta name="dtb:depth" content="1"/>
    <meta name="dtb:totalPageCount" content="0"/>
    <meta name="dtb:maxPageNumber" content="0"/>
  </head>
  <docTitle>
    <text>%s</text>
  </docTitle>
  <navMap>
`, esc(w.identifier()), esc(w.Book.Title))

	for i, d := range docs {
		fmt.Fprintf(&sb, "    <navPoint id=\"navpoint-%d\" playOrder=\"%d\">\n", i+1, i+1)
		fmt.Fprintf(&sb, "      <navLabel><text>%s</text></navLabel>\n", esc(d.Title))
		fmt.Fprintf(&sb, "      <content src=\"%s\"/>\n", esc(d.FileName))
		sb.WriteString("    </navPoint>\n")
	}

	sb.WriteString(`  </navMap>
</ncx>
`)

	return sb.String()
}

func chapterPage(d Document) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml" lang="en" xml:lang="en">
<head>
  <title>%s</title>
  <link rel="stylesheet" type="text/css" href="style/nav.css"/>
</head>
<body>
%s
</body>
</html>
`, esc(d.Title), d.Body)
}

func coverPage(title string, cv *cover) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE html>
<html xmlns="http://www.w3.org/1999/xhtml">
<head>
  <title>Cover</title>
</head>
<body>
  <img src="%s" alt="%s"/>
</body>
</html>
`, cv.file, esc(title))
}
