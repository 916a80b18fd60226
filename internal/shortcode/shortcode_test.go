package shortcode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/hookpress/internal/models"
)

func newTestProcessor(t *testing.T, defs ...Definition) *Processor {
	t.Helper()
	p, err := NewProcessor("", "", append(Builtins(), defs...)...)
	require.NoError(t, err)
	return p
}

func TestProcess_Box(t *testing.T) {
	p := newTestProcessor(t)
	out, err := p.Process(context.Background(), `<p>{{box class="yellow"}}Hi{{/box}}</p>`, Args{})
	require.NoError(t, err)
	assert.Equal(t, `<p><div class="box yellow">Hi</div></p>`, out.HTML)
	require.Len(t, out.CSS, 1)
	assert.Contains(t, out.CSS[0], ".box")
}

func TestProcess_SelfClosing(t *testing.T) {
	p := newTestProcessor(t)
	all := []models.Request{{Slug: "a"}, {Slug: "b"}, {Slug: "c"}}
	out, err := p.Process(context.Background(), "pages: {{numberOfPages /}}", Args{AllRequests: all})
	require.NoError(t, err)
	assert.Equal(t, "pages: 3", out.HTML)
}

func TestProcess_NestedExpandsInnerFirst(t *testing.T) {
	p := newTestProcessor(t)
	in := `{{box class="outer"}}a{{box class="inner"}}{{numberOfPages/}}{{/box}}b{{/box}}`
	out, err := p.Process(context.Background(), in, Args{AllRequests: []models.Request{{}}})
	require.NoError(t, err)
	assert.Equal(t, `<div class="box outer">a<div class="box inner">1</div>b</div>`, out.HTML)
	assert.Len(t, out.CSS, 2)
}

func TestProcess_UnknownLeftAlone(t *testing.T) {
	p := newTestProcessor(t)
	in := "{{clock /}} and {{ not a tag and {{/box}}"
	out, err := p.Process(context.Background(), in, Args{})
	require.NoError(t, err)
	assert.Equal(t, in, out.HTML)
}

func TestProcess_MissingClosingTag(t *testing.T) {
	p := newTestProcessor(t)
	_, err := p.Process(context.Background(), `{{box class="x"}}never closed`, Args{})
	assert.Error(t, err)
}

func TestProcess_PropsQuoting(t *testing.T) {
	var got map[string]string
	capture := Definition{Name: "capture", Run: func(_ context.Context, a Args) (Result, error) {
		got = a.Props
		return Result{}, nil
	}}
	p := newTestProcessor(t, capture)
	_, err := p.Process(context.Background(), `{{capture name="Clock" options='{"preload":true}' n=3 empty="" /}}`, Args{})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"name":    "Clock",
		"options": `{"preload":true}`,
		"n":       "3",
		"empty":   "",
	}, got)
}

func TestProcess_EscapedQuotesFromMarkdown(t *testing.T) {
	p := newTestProcessor(t)
	out, err := p.Process(context.Background(), `<p>{{box class=&quot;yellow&quot;}}hi{{/box}}</p>`, Args{})
	require.NoError(t, err)
	assert.Equal(t, `<p><div class="box yellow">hi</div></p>`, out.HTML)
}

func TestProcess_CustomDelimitersAndStacks(t *testing.T) {
	def := Definition{Name: "meta", Run: func(context.Context, Args) (Result, error) {
		return Result{HTML: "m", JS: "<script></script>", Head: `<meta test="true"/>`}, nil
	}}
	p, err := NewProcessor("[[", "]]", def)
	require.NoError(t, err)

	out, err := p.Process(context.Background(), "[[meta/]][[meta /]]", Args{})
	require.NoError(t, err)
	assert.Equal(t, "mm", out.HTML)
	assert.Len(t, out.JS, 2)
	assert.Len(t, out.Head, 2)
}

func TestProcess_RunErrorWrapped(t *testing.T) {
	boom := errors.New("boom")
	p := newTestProcessor(t, Definition{Name: "bad", Run: func(context.Context, Args) (Result, error) {
		return Result{}, boom
	}})
	_, err := p.Process(context.Background(), "{{bad/}}", Args{})
	assert.ErrorIs(t, err, boom)
}

func TestNewProcessor_Validation(t *testing.T) {
	_, err := NewProcessor("%%", "%%")
	assert.Error(t, err)
	_, err = NewProcessor("", "", Definition{Name: "9lives", Run: Box().Run})
	assert.Error(t, err)
	_, err = NewProcessor("", "", Definition{Name: "ok"})
	assert.Error(t, err)
}
