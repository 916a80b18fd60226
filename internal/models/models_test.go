package models

import "testing"

func TestFrontMatter_Slug(t *testing.T) {
	cases := []struct {
		name string
		fm   FrontMatter
		want string
	}{
		{"string", FrontMatter{"slug": "custom"}, "custom"},
		{"int", FrontMatter{"slug": 42}, "42"},
		{"empty", FrontMatter{"slug": ""}, ""},
		{"missing", FrontMatter{"title": "x"}, ""},
		{"list ignored", FrontMatter{"slug": []any{"a"}}, ""},
		{"nil map", nil, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.fm.Slug(); got != c.want {
				t.Errorf("Slug() = %q, want %q", got, c.want)
			}
		})
	}
}

func TestData_MergeDoesNotMutate(t *testing.T) {
	in := Data{"a": 1}
	out := in.Merge(Data{"b": 2})
	if _, ok := in["b"]; ok {
		t.Fatal("Merge mutated its receiver")
	}
	if out["a"] != 1 || out["b"] != 2 {
		t.Errorf("out = %v", out)
	}
}

func TestData_Documents(t *testing.T) {
	if _, ok := (Data{}).Documents(); ok {
		t.Error("empty data should report no documents")
	}
	if _, ok := (Data{DataMarkdown: "nope"}).Documents(); ok {
		t.Error("wrong type should report no documents")
	}
	docs, ok := (Data{DataMarkdown: []Document{{Slug: "a"}}}).Documents()
	if !ok || len(docs) != 1 {
		t.Errorf("docs = %v, ok = %v", docs, ok)
	}
}
