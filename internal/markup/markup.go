// Package markup renders editorial text containing <Type:Tag> cross-reference
// tokens into HTML or a plaintext approximation.
package markup

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"

	"github.com/pkordes/webcomics/internal/domain"
)

// tokenPattern matches <TypeTitle:TagTitle>. Each side is letters, digits,
// spaces and hyphens.
var tokenPattern = regexp.MustCompile(`<([\p{L}\p{N} -]+):([\p{L}\p{N} -]+)>`)

// Segment is one piece of split editorial text: either prose or a token.
type Segment struct {
	Text  string // prose, or the raw token including angle brackets
	Token bool
	Ref   domain.TagRef // set when Token is true, casing as written
}

// Split breaks text into alternating prose and token segments, in order.
// Empty prose between adjacent tokens is omitted.
func Split(text string) []Segment {
	matches := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	segs := make([]Segment, 0, 2*len(matches)+1)
	last := 0
	for _, m := range matches {
		if m[0] > last {
			segs = append(segs, Segment{Text: text[last:m[0]]})
		}
		segs = append(segs, Segment{
			Text:  text[m[0]:m[1]],
			Token: true,
			Ref:   domain.TagRef{Type: text[m[2]:m[3]], Tag: text[m[4]:m[5]]},
		})
		last = m[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// TagLookup resolves (type, tag) title pairs within a tenant in one call.
// repo.TagRepo satisfies it.
type TagLookup interface {
	LookupRefs(ctx context.Context, tenantID uuid.UUID, refs []domain.TagRef) ([]domain.ResolvedTag, error)
}

// Renderer converts editorial text to HTML. It holds no per-call state and
// is safe for concurrent use.
type Renderer struct {
	tags TagLookup
	md   goldmark.Markdown
}

// NewRenderer returns a Renderer resolving tokens through tags.
func NewRenderer(tags TagLookup) *Renderer {
	return &Renderer{
		tags: tags,
		md: goldmark.New(
			// Resolved tokens are emitted as inline HTML and must survive conversion.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

// HTML renders text for tenantID. All tokens are resolved with a single
// lookup; none is issued when the text holds no token. Unresolved tokens
// render as a visible broken-reference marker. Only a lookup or conversion
// failure returns an error.
func (r *Renderer) HTML(ctx context.Context, tenantID uuid.UUID, text string) (string, error) {
	segs := Split(text)

	fold := cases.Fold()
	key := func(ref domain.TagRef) string {
		return fold.String(ref.Type) + "\x00" + fold.String(ref.Tag)
	}

	var refs []domain.TagRef
	seen := map[string]bool{}
	for _, s := range segs {
		if !s.Token {
			continue
		}
		k := key(s.Ref)
		if !seen[k] {
			seen[k] = true
			refs = append(refs, s.Ref)
		}
	}

	resolved := map[string]domain.ResolvedTag{}
	if len(refs) > 0 {
		found, err := r.tags.LookupRefs(ctx, tenantID, refs)
		if err != nil {
			return "", fmt.Errorf("markup.Renderer.HTML: %w", err)
		}
		for _, t := range found {
			resolved[key(t.Ref())] = t
		}
	}

	var src strings.Builder
	for _, s := range segs {
		if !s.Token {
			src.WriteString(s.Text)
			continue
		}
		if t, ok := resolved[key(s.Ref)]; ok {
			src.WriteString(tagLink(t, s.Ref.Tag))
		} else {
			src.WriteString(brokenLink(s.Ref.Tag))
		}
	}

	var out bytes.Buffer
	if err := r.md.Convert([]byte(src.String()), &out); err != nil {
		return "", fmt.Errorf("markup.Renderer.HTML: convert: %w", err)
	}
	return out.String(), nil
}

func tagLink(t domain.ResolvedTag, text string) string {
	href := html.EscapeString(t.Ref().ArchiveURL())
	icon := t.IconURL()
	if icon == "" {
		return fmt.Sprintf(`<a class="tag" href="%s">%s</a>`, href, html.EscapeString(text))
	}
	return fmt.Sprintf(`<a class="tag" href="%s" style="background-image:url(%s)">%s</a>`,
		href, html.EscapeString(icon), html.EscapeString(text))
}

func brokenLink(text string) string {
	return `<a class="tag error" href="">` + html.EscapeString(text) + `</a>`
}

var proseStripper = strings.NewReplacer(">", "", "[", "", "]", "", "*", "")

// Plain renders a lossy plaintext version of text. Markdown markers are
// dropped from prose and each token becomes its bracketed tag name.
func Plain(text string) string {
	var b strings.Builder
	for _, s := range Split(strings.ReplaceAll(text, "\r\n", "\n")) {
		if s.Token {
			b.WriteString("[" + s.Ref.Tag + "]")
			continue
		}
		b.WriteString(proseStripper.Replace(s.Text))
	}
	out := strings.ReplaceAll(b.String(), "\n ", "\n")
	return strings.ReplaceAll(out, "\n\n", "\n")
}
