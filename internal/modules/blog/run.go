package blog

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

type Role string

const (
	RoleCover         Role = "cover"
	RoleSectionVisual Role = "section_visual"
	RoleDocument      Role = "document"
)

const (
	DefaultOutputRoot = "generated/blogs"

	runTokenLen = 12
)

// RunContext owns the file namespace of one pipeline invocation. It is never
// mutated after NewRun returns.
type RunContext struct {
	ID         string
	OutputRoot string
}

func NewRun(outputRoot string) RunContext {
	root := strings.TrimSpace(outputRoot)
	if root == "" {
		root = DefaultOutputRoot
	}
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return RunContext{ID: token[:runTokenLen], OutputRoot: filepath.Clean(root)}
}

func (r RunContext) AssetsDir() string {
	return filepath.Join(r.OutputRoot, "assets")
}

// NameFor returns the run-unique path for an artifact. section and need are
// only meaningful for section visuals.
func (r RunContext) NameFor(role Role, section, need int, hint string) string {
	switch role {
	case RoleCover:
		return filepath.Join(r.AssetsDir(), fmt.Sprintf("cover_%s.png", r.ID))
	case RoleDocument:
		return filepath.Join(r.OutputRoot, fmt.Sprintf("blog_%s.docx", r.ID))
	default:
		stem := fmt.Sprintf("sec%d_vis%d", section, need)
		if slug := slugHint(hint, 20); slug != "" {
			stem += "_" + slug
		}
		return filepath.Join(r.AssetsDir(), fmt.Sprintf("%s_%s.png", stem, r.ID))
	}
}

// Rel returns path relative to the output root with forward slashes, the form
// used inside image markers.
func (r RunContext) Rel(path string) string {
	rel, err := filepath.Rel(r.OutputRoot, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// Resolve maps a marker path back to a filesystem path under the output
// root. Absolute paths and paths that climb out of the root are refused, so
// section text cannot pull arbitrary host files into a document.
func (r RunContext) Resolve(markerPath string) (string, bool) {
	p := filepath.FromSlash(strings.TrimSpace(markerPath))
	if p == "" || filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return "", false
	}
	clean := filepath.Clean(p)
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.Join(r.OutputRoot, clean), true
}

func slugHint(s string, max int) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r == ' ' || r == '-' || r == '_':
			return '_'
		default:
			return -1
		}
	}, s)
	for strings.Contains(s, "__") {
		s = strings.ReplaceAll(s, "__", "_")
	}
	if len(s) > max {
		s = s[:max]
	}
	return strings.Trim(s, "_")
}

type ManifestEntry struct {
	Role Role   `json:"role"`
	Path string `json:"path"`
}

// Manifest records every path a run produced. Append-only.
type Manifest struct {
	mu      sync.Mutex
	entries []ManifestEntry
}

func (m *Manifest) Add(role Role, path string) {
	if strings.TrimSpace(path) == "" {
		return
	}
	m.mu.Lock()
	m.entries = append(m.entries, ManifestEntry{Role: role, Path: path})
	m.mu.Unlock()
}

func (m *Manifest) Entries() []ManifestEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ManifestEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m *Manifest) Paths() []string {
	entries := m.Entries()
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Path)
	}
	return out
}

func (m *Manifest) ByRole(role Role) []string {
	out := []string{}
	for _, e := range m.Entries() {
		if e.Role == role {
			out = append(out, e.Path)
		}
	}
	return out
}
