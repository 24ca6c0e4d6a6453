package blog

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/codoraai-coder/marketing-agent/internal/platform/docx"
	"github.com/codoraai-coder/marketing-agent/internal/platform/logger"
)

const (
	coverWidthInches   = 6.0
	sectionWidthInches = 5.5
	footerTextSizePt   = 10
)

// Container is the document being built. *docx.Document satisfies it.
type Container interface {
	AddHeading(text string, level int)
	AddParagraph(style docx.Style, align docx.Alignment, runs ...docx.Run)
	AddPicture(path string, widthInches float64, align docx.Alignment) error
	SetFooter(f docx.Footer) error
	Save(path string) error
}

// The footer is always present; these apply when no brand is configured.
const (
	DefaultBrandText = "@aiwithsid"
	DefaultBrandURL  = "http://grwothbrothers.in"
)

type Branding struct {
	Text     string `yaml:"text"`
	URL      string `yaml:"url"`
	LogoPath string `yaml:"logo_path"`
}

type AssembleInput struct {
	Run       RunContext
	Plan      Plan
	Sections  []Section
	CoverPath string
	Topic     string
	Published time.Time
}

type Assembler struct {
	log          *logger.Logger
	brand        Branding
	newContainer func() Container
}

func NewAssembler(log *logger.Logger, brand Branding, newContainer func() Container) *Assembler {
	if log == nil {
		log = logger.Nop()
	}
	if newContainer == nil {
		newContainer = func() Container { return docx.New(docx.Options{FontName: "Calibri", FontSizePt: 12}) }
	}
	if strings.TrimSpace(brand.Text) == "" && strings.TrimSpace(brand.URL) == "" {
		brand.Text, brand.URL = DefaultBrandText, DefaultBrandURL
	}
	return &Assembler{log: log.With("service", "DocumentAssembler"), brand: brand, newContainer: newContainer}
}

// Assemble renders every section in order and saves the document under the
// run's document path. Missing assets degrade to placeholders; only a failed
// save is returned as an error.
func (a *Assembler) Assemble(ctx context.Context, in AssembleInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	log := a.log.With("run_id", in.Run.ID)
	doc := a.newContainer()

	title := strings.TrimSpace(in.Plan.Title)
	if title == "" {
		title = defaultTitle(in.Topic)
	}
	published := in.Published
	if published.IsZero() {
		published = time.Now()
	}
	doc.AddHeading(title, 1)
	doc.AddParagraph(docx.StyleNormal, docx.AlignLeft, docx.Run{Text: "Published: " + published.Format("January 02, 2006"), Italic: true})

	if in.CoverPath != "" {
		if err := doc.AddPicture(in.CoverPath, coverWidthInches, docx.AlignCenter); err != nil {
			log.Warn("cover skipped", "path", in.CoverPath, "error", err)
		}
	}

	for _, sec := range in.Sections {
		if !isIntroduction(sec.Heading) {
			doc.AddHeading(sec.Heading, 2)
		}
		text := sec.Enriched
		if text == "" {
			text = sec.RawText
		}
		for _, blk := range ParseBlocks(text) {
			a.renderBlock(doc, in.Run, blk, log)
		}
	}

	if footer, ok := a.footer(); ok {
		if err := doc.SetFooter(footer); err != nil {
			log.Warn("footer logo skipped", "path", a.brand.LogoPath, "error", err)
			footer.LogoPath = ""
			_ = doc.SetFooter(footer)
		}
	}

	out := in.Run.NameFor(RoleDocument, 0, 0, "")
	if err := doc.Save(out); err != nil {
		return "", fmt.Errorf("save document: %w", err)
	}
	log.Info("document saved", "path", out)
	return out, nil
}

func (a *Assembler) renderBlock(doc Container, run RunContext, blk Block, log *logger.Logger) {
	switch blk.Kind {
	case BlockImage:
		path, ok := run.Resolve(blk.Path)
		if !ok {
			log.Warn("image outside output root refused", "path", blk.Path)
			doc.AddParagraph(docx.StyleNormal, docx.AlignLeft, noteRun(missingNote(blk.Caption)))
			return
		}
		if _, err := os.Stat(path); err != nil {
			log.Warn("image missing at assembly", "path", path, "error", err)
			doc.AddParagraph(docx.StyleNormal, docx.AlignLeft, noteRun(missingNote(blk.Caption)))
			return
		}
		if err := doc.AddPicture(path, sectionWidthInches, docx.AlignCenter); err != nil {
			log.Warn("image unreadable at assembly", "path", path, "error", err)
			doc.AddParagraph(docx.StyleNormal, docx.AlignLeft, noteRun(missingNote(blk.Caption)))
			return
		}
		if blk.Caption != "" {
			doc.AddParagraph(docx.StyleNormal, docx.AlignCenter, docx.Run{Text: "Figure: " + blk.Caption, Italic: true})
		}
	case BlockSubheading:
		doc.AddHeading(blk.Text, 3)
	case BlockBullet:
		doc.AddParagraph(docx.StyleListBullet, docx.AlignLeft, runsFor(blk.Text)...)
	case BlockNumbered:
		doc.AddParagraph(docx.StyleListNumber, docx.AlignLeft, runsFor(blk.Text)...)
	case BlockNote:
		doc.AddParagraph(docx.StyleNormal, docx.AlignLeft, noteRun(blk.Text))
	default:
		doc.AddParagraph(docx.StyleNormal, docx.AlignLeft, runsFor(blk.Text)...)
	}
}

func (a *Assembler) footer() (docx.Footer, bool) {
	text := strings.TrimSpace(a.brand.Text)
	url := strings.TrimSpace(a.brand.URL)
	if text == "" && url == "" && strings.TrimSpace(a.brand.LogoPath) == "" {
		return docx.Footer{}, false
	}
	f := docx.Footer{Align: docx.AlignRight, LogoPath: strings.TrimSpace(a.brand.LogoPath), LogoWidthInches: 0.5}
	if text != "" {
		if url != "" {
			text += " | "
		}
		f.Runs = append(f.Runs, docx.Run{Text: text, Italic: true, SizePt: footerTextSizePt})
	}
	if url != "" {
		f.Runs = append(f.Runs, docx.Run{Text: url, Hyperlink: url, SizePt: footerTextSizePt})
	}
	return f, true
}

// missingNote matches the text of MissingMarker once its quote prefix is
// stripped, so both failure paths read the same in the document.
func missingNote(keywords string) string {
	return strings.TrimSpace(strings.TrimPrefix(MissingMarker(keywords), ">"))
}

func noteRun(text string) docx.Run {
	return docx.Run{Text: text, Italic: true}
}

func runsFor(text string) []docx.Run {
	spans := Emphasis(text)
	out := make([]docx.Run, 0, len(spans))
	for _, s := range spans {
		out = append(out, docx.Run{Text: s.Text, Bold: s.Bold, Italic: s.Italic})
	}
	return out
}

func isIntroduction(heading string) bool {
	return strings.Contains(strings.ToLower(heading), "introduction")
}

func defaultTitle(topic string) string {
	return "Understanding " + strings.TrimSpace(topic)
}
