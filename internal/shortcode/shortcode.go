// Package shortcode expands {{name prop="v"}}content{{/name}} placeholders in
// rendered HTML. Each shortcode returns replacement HTML plus optional CSS, JS
// and head markup that the page collects into stacks.
package shortcode

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/starford/hookpress/internal/models"
)

// Default delimiters.
const (
	DefaultOpen  = "{{"
	DefaultClose = "}}"
)

var (
	nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*`)
	propRe = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_-]*)\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s"']+))`)
)

// Args is passed to a shortcode.
type Args struct {
	Props       map[string]string
	Content     string
	Request     models.Request
	AllRequests []models.Request
}

// Result is the expansion of one shortcode.
type Result struct {
	HTML string
	CSS  string
	JS   string
	Head string
}

// Func expands a shortcode.
type Func func(ctx context.Context, args Args) (Result, error)

// Definition binds a name to its expansion.
type Definition struct {
	Name string
	Run  Func
}

// Output is the processed HTML and the collected stacks.
type Output struct {
	HTML string
	CSS  []string
	JS   []string
	Head []string
}

// Processor expands registered shortcodes. It is safe for concurrent use.
type Processor struct {
	open  string
	close string
	defs  map[string]Definition
}

// NewProcessor builds a processor. Empty delimiters fall back to the defaults.
// Later definitions replace earlier ones with the same name.
func NewProcessor(open, close string, defs ...Definition) (*Processor, error) {
	if open == "" {
		open = DefaultOpen
	}
	if close == "" {
		close = DefaultClose
	}
	if open == close {
		return nil, fmt.Errorf("shortcode: open and close patterns must differ, both are %q", open)
	}
	p := &Processor{open: open, close: close, defs: make(map[string]Definition, len(defs))}
	for _, d := range defs {
		if !nameRe.MatchString(d.Name) || nameRe.FindString(d.Name) != d.Name {
			return nil, fmt.Errorf("shortcode: invalid name %q", d.Name)
		}
		if d.Run == nil {
			return nil, fmt.Errorf("shortcode: %q has no run function", d.Name)
		}
		p.defs[d.Name] = d
	}
	return p, nil
}

// Names returns the registered shortcode names.
func (p *Processor) Names() []string {
	out := make([]string, 0, len(p.defs))
	for name := range p.defs {
		out = append(out, name)
	}
	return out
}

// Process expands every known shortcode in input. Unknown shortcodes are left
// as written. Inner shortcodes expand before the shortcode that wraps them.
func (p *Processor) Process(ctx context.Context, input string, args Args) (Output, error) {
	var out Output
	html, err := p.expand(ctx, input, args, &out)
	if err != nil {
		return Output{}, err
	}
	out.HTML = html
	return out, nil
}

type tag struct {
	name        string
	props       map[string]string
	selfClosing bool
	end         int // index just past the tag's close pattern
}

func (p *Processor) expand(ctx context.Context, input string, args Args, out *Output) (string, error) {
	var b strings.Builder
	pos := 0
	for {
		i := strings.Index(input[pos:], p.open)
		if i < 0 {
			b.WriteString(input[pos:])
			return b.String(), nil
		}
		start := pos + i
		b.WriteString(input[pos:start])

		t, ok := p.parseTag(input, start)
		if !ok {
			b.WriteString(p.open)
			pos = start + len(p.open)
			continue
		}

		content := ""
		next := t.end
		if !t.selfClosing {
			inner, after, found := p.findClosing(input, t.name, t.end)
			if !found {
				return "", fmt.Errorf("shortcode: %q at offset %d has no closing tag", t.name, start)
			}
			content, next = inner, after
		}

		expanded, err := p.expand(ctx, content, args, out)
		if err != nil {
			return "", err
		}

		res, err := p.defs[t.name].Run(ctx, Args{
			Props:       t.props,
			Content:     expanded,
			Request:     args.Request,
			AllRequests: args.AllRequests,
		})
		if err != nil {
			return "", fmt.Errorf("shortcode: %s: %w", t.name, err)
		}

		b.WriteString(res.HTML)
		if res.CSS != "" {
			out.CSS = append(out.CSS, res.CSS)
		}
		if res.JS != "" {
			out.JS = append(out.JS, res.JS)
		}
		if res.Head != "" {
			out.Head = append(out.Head, res.Head)
		}
		pos = next
	}
}

// parseTag reads an opening tag of a known shortcode starting at start.
func (p *Processor) parseTag(input string, start int) (tag, bool) {
	bodyStart := start + len(p.open)
	j := strings.Index(input[bodyStart:], p.close)
	if j < 0 {
		return tag{}, false
	}
	// Markdown renderers escape quotes in text, so props may arrive as &quot;.
	raw := html.UnescapeString(strings.TrimSpace(input[bodyStart : bodyStart+j]))
	name := nameRe.FindString(raw)
	if name == "" {
		return tag{}, false
	}
	if _, known := p.defs[name]; !known {
		return tag{}, false
	}
	rest := raw[len(name):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' && rest[0] != '\n' && rest[0] != '/' {
		return tag{}, false
	}

	selfClosing := strings.HasSuffix(rest, "/")
	if selfClosing {
		rest = strings.TrimSuffix(rest, "/")
	}

	return tag{
		name:        name,
		props:       parseProps(rest),
		selfClosing: selfClosing,
		end:         bodyStart + j + len(p.close),
	}, true
}

// findClosing locates the closing tag of name that balances the opening tag
// ending at from. It returns the enclosed content and the index after the
// closing tag.
func (p *Processor) findClosing(input, name string, from int) (string, int, bool) {
	closing := p.open + "/" + name + p.close
	depth := 1
	pos := from
	for pos < len(input) {
		c := strings.Index(input[pos:], closing)
		if c < 0 {
			return "", 0, false
		}
		o := strings.Index(input[pos:], p.open)
		if o >= 0 && o < c {
			at := pos + o
			if t, ok := p.parseTag(input, at); ok && t.name == name {
				if !t.selfClosing {
					depth++
				}
				pos = t.end
				continue
			}
			pos = at + len(p.open)
			continue
		}
		end := pos + c
		depth--
		if depth == 0 {
			return input[from:end], end + len(closing), true
		}
		pos = end + len(closing)
	}
	return "", 0, false
}

func parseProps(raw string) map[string]string {
	props := make(map[string]string)
	for _, m := range propRe.FindAllStringSubmatchIndex(raw, -1) {
		key := raw[m[2]:m[3]]
		for g := 4; g < len(m); g += 2 {
			if m[g] >= 0 {
				props[key] = raw[m[g]:m[g+1]]
				break
			}
		}
	}
	return props
}
