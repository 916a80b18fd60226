package models

// Data is the shared mapping accumulated across hook invocations.
// Hooks never mutate the Data they receive; they return a new one.
type Data map[string]any

// Keys contributed by the markdown plugin.
const (
	DataMarkdown    = "markdown"
	DataFrontMatter = "frontmatter"
	DataHTML        = "html"
)

// Clone returns a shallow copy of d. A nil Data clones to an empty one.
func (d Data) Clone() Data {
	out := make(Data, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Merge returns a copy of d with every entry of extra applied on top.
func (d Data) Merge(extra Data) Data {
	out := make(Data, len(d)+len(extra))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

// With returns a copy of d with key set to value.
func (d Data) With(key string, value any) Data {
	return d.Merge(Data{key: value})
}

// Documents returns the markdown document sequence stored under DataMarkdown.
// ok is false when the key is missing or holds something else.
func (d Data) Documents() (docs []Document, ok bool) {
	v, found := d[DataMarkdown]
	if !found {
		return nil, false
	}
	docs, ok = v.([]Document)
	return docs, ok
}
