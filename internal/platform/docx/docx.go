// Package docx writes minimal WordprocessingML documents: headings, styled
// paragraphs, list items, inline pictures and a footer.
package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/webp"
)

const emuPerInch = 914400

type Alignment string

const (
	AlignLeft   Alignment = ""
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

type Style string

const (
	StyleNormal     Style = ""
	StyleListBullet Style = "ListBullet"
	StyleListNumber Style = "ListNumber"
)

// Run is a span of text with uniform formatting. A non-empty Hyperlink turns
// the run into an external link.
type Run struct {
	Text      string
	Bold      bool
	Italic    bool
	SizePt    float64
	Hyperlink string
}

type Footer struct {
	LogoPath        string
	LogoWidthInches float64
	Runs            []Run
	Align           Alignment
}

type Options struct {
	FontName   string
	FontSizePt float64
}

type Document struct {
	opts Options
	body strings.Builder

	rels   partRels
	media  []mediaFile
	footer *footerPart
	drawID int
}

type mediaFile struct {
	name string
	data []byte
}

type footerPart struct {
	xml  string
	rels partRels
}

type relationship struct {
	id, typ, target string
	external        bool
}

type partRels struct {
	items []relationship
}

const (
	relImage     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relHyperlink = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
	relStyles    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relNumbering = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/numbering"
	relFooter    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer"
)

func (p *partRels) add(typ, target string, external bool) string {
	id := fmt.Sprintf("rId%d", len(p.items)+10)
	p.items = append(p.items, relationship{id: id, typ: typ, target: target, external: external})
	return id
}

func New(opts Options) *Document {
	if strings.TrimSpace(opts.FontName) == "" {
		opts.FontName = "Calibri"
	}
	if opts.FontSizePt <= 0 {
		opts.FontSizePt = 12
	}
	return &Document{opts: opts}
}

// AddHeading appends a heading. Levels outside 1..3 are clamped.
func (d *Document) AddHeading(text string, level int) {
	if level < 1 {
		level = 1
	}
	if level > 3 {
		level = 3
	}
	fmt.Fprintf(&d.body, `<w:p><w:pPr><w:pStyle w:val="Heading%d"/></w:pPr>%s</w:p>`, level, textRun(Run{Text: text}))
}

func (d *Document) AddParagraph(style Style, align Alignment, runs ...Run) {
	d.body.WriteString(paragraphXML(&d.rels, style, align, runs))
}

// AddPicture embeds the image at path scaled to widthInches, keeping its
// aspect ratio. Unreadable or undecodable files are reported and nothing is
// appended.
func (d *Document) AddPicture(path string, widthInches float64, align Alignment) error {
	drawing, err := d.drawing(&d.rels, path, widthInches)
	if err != nil {
		return err
	}
	d.body.WriteString(paragraphOpen(StyleNormal, align) + drawing + "</w:p>")
	return nil
}

// SetFooter replaces the footer. A logo that cannot be embedded fails the call
// and leaves any previous footer in place.
func (d *Document) SetFooter(f Footer) error {
	part := &footerPart{}
	var b strings.Builder
	b.WriteString(paragraphOpen(StyleNormal, f.Align))
	if strings.TrimSpace(f.LogoPath) != "" {
		width := f.LogoWidthInches
		if width <= 0 {
			width = 0.5
		}
		drawing, err := d.drawing(&part.rels, f.LogoPath, width)
		if err != nil {
			return fmt.Errorf("footer logo: %w", err)
		}
		b.WriteString(drawing)
	}
	for _, r := range f.Runs {
		b.WriteString(runXML(&part.rels, r))
	}
	b.WriteString("</w:p>")
	part.xml = b.String()
	d.footer = part
	return nil
}

// Save serializes the document to path via a sibling temp file and rename.
func (d *Document) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	var buf bytes.Buffer
	if err := d.write(&buf); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docx-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename document: %w", err)
	}
	return nil
}

func (d *Document) write(w *bytes.Buffer) error {
	zw := zip.NewWriter(w)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", contentTypesXML(d.footer != nil)},
		{"_rels/.rels", rootRelsXML},
		{"word/document.xml", d.documentXML()},
		{"word/styles.xml", stylesXML(d.opts)},
		{"word/numbering.xml", numberingXML},
		{"word/_rels/document.xml.rels", d.documentRels()},
	}
	if d.footer != nil {
		parts = append(parts,
			struct{ name, body string }{"word/footer1.xml", footerOpen + d.footer.xml + "</w:ftr>"},
			struct{ name, body string }{"word/_rels/footer1.xml.rels", relsXML(d.footer.rels.items)},
		)
	}
	for _, p := range parts {
		f, err := zw.Create(p.name)
		if err != nil {
			return fmt.Errorf("zip %s: %w", p.name, err)
		}
		if _, err := f.Write([]byte(p.body)); err != nil {
			return fmt.Errorf("zip %s: %w", p.name, err)
		}
	}
	for _, m := range d.media {
		f, err := zw.Create("word/media/" + m.name)
		if err != nil {
			return fmt.Errorf("zip media: %w", err)
		}
		if _, err := f.Write(m.data); err != nil {
			return fmt.Errorf("zip media: %w", err)
		}
	}
	return zw.Close()
}

func (d *Document) documentXML() string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<w:document ` + namespaces + `><w:body>`)
	b.WriteString(d.body.String())
	b.WriteString(`<w:sectPr>`)
	if d.footer != nil {
		b.WriteString(`<w:footerReference w:type="default" r:id="rId3"/>`)
	}
	b.WriteString(`<w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func (d *Document) documentRels() string {
	fixed := []relationship{
		{id: "rId1", typ: relStyles, target: "styles.xml"},
		{id: "rId2", typ: relNumbering, target: "numbering.xml"},
	}
	if d.footer != nil {
		fixed = append(fixed, relationship{id: "rId3", typ: relFooter, target: "footer1.xml"})
	}
	return relsXML(append(fixed, d.rels.items...))
}

// drawing embeds the image bytes and returns an inline drawing run whose
// relationship lives in rels.
func (d *Document) drawing(rels *partRels, path string, widthInches float64) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decode image %s: %w", filepath.Base(path), err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return "", fmt.Errorf("decode image %s: empty bounds", filepath.Base(path))
	}
	ext := format
	switch format {
	case "jpeg", "png", "gif":
	case "webp":
		if data, err = webpToPNG(data); err != nil {
			return "", err
		}
		ext = "png"
	default:
		return "", fmt.Errorf("unsupported image format %q", format)
	}
	if widthInches <= 0 {
		widthInches = 6
	}
	cx := int64(widthInches * emuPerInch)
	cy := cx * int64(cfg.Height) / int64(cfg.Width)

	name := fmt.Sprintf("image%d.%s", len(d.media)+1, ext)
	d.media = append(d.media, mediaFile{name: name, data: data})
	rid := rels.add(relImage, "media/"+name, false)
	d.drawID++
	id := d.drawID
	return fmt.Sprintf(`<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0"><wp:extent cx="%d" cy="%d"/><wp:docPr id="%d" name="Picture %d"/><a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture"><pic:pic><pic:nvPicPr><pic:cNvPr id="%d" name="%s"/><pic:cNvPicPr/></pic:nvPicPr><pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill><pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm><a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		cx, cy, id, id, id, name, rid, cx, cy), nil
}

func webpToPNG(data []byte) ([]byte, error) {
	img, err := webp.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode webp: %w", err)
	}
	var out bytes.Buffer
	if err := png.Encode(&out, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return out.Bytes(), nil
}

func paragraphOpen(style Style, align Alignment) string {
	var props strings.Builder
	if style != StyleNormal {
		fmt.Fprintf(&props, `<w:pStyle w:val="%s"/>`, style)
		switch style {
		case StyleListBullet:
			props.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="1"/></w:numPr>`)
		case StyleListNumber:
			props.WriteString(`<w:numPr><w:ilvl w:val="0"/><w:numId w:val="2"/></w:numPr>`)
		}
	}
	if align != AlignLeft {
		fmt.Fprintf(&props, `<w:jc w:val="%s"/>`, align)
	}
	if props.Len() == 0 {
		return "<w:p>"
	}
	return "<w:p><w:pPr>" + props.String() + "</w:pPr>"
}

func paragraphXML(rels *partRels, style Style, align Alignment, runs []Run) string {
	var b strings.Builder
	b.WriteString(paragraphOpen(style, align))
	for _, r := range runs {
		b.WriteString(runXML(rels, r))
	}
	b.WriteString("</w:p>")
	return b.String()
}

func runXML(rels *partRels, r Run) string {
	if strings.TrimSpace(r.Hyperlink) == "" {
		return textRun(r)
	}
	id := rels.add(relHyperlink, r.Hyperlink, true)
	return fmt.Sprintf(`<w:hyperlink r:id="%s">%s</w:hyperlink>`, id, textRun(r))
}

func textRun(r Run) string {
	var props strings.Builder
	if r.Hyperlink != "" {
		props.WriteString(`<w:rStyle w:val="Hyperlink"/>`)
	}
	if r.Bold {
		props.WriteString("<w:b/>")
	}
	if r.Italic {
		props.WriteString("<w:i/>")
	}
	if r.SizePt > 0 {
		fmt.Fprintf(&props, `<w:sz w:val="%d"/>`, int(r.SizePt*2))
	}
	var b strings.Builder
	b.WriteString("<w:r>")
	if props.Len() > 0 {
		b.WriteString("<w:rPr>" + props.String() + "</w:rPr>")
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(&b, []byte(r.Text))
	b.WriteString("</w:t></w:r>")
	return b.String()
}

func relsXML(items []relationship) string {
	var b strings.Builder
	b.WriteString(xml.Header)
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	for _, r := range items {
		fmt.Fprintf(&b, `<Relationship Id="%s" Type="%s" Target="`, r.id, r.typ)
		_ = xml.EscapeText(&b, []byte(r.target))
		b.WriteString(`"`)
		if r.external {
			b.WriteString(` TargetMode="External"`)
		}
		b.WriteString(`/>`)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}
