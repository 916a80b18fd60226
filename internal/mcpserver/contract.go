package mcpserver

// ContentFormat describes how content files are written so that LLM clients
// can reason about the pages they produce.
const ContentFormat = `# Content File Format

Content lives in ` + "`" + `<src>/routes/<route>/*.md` + "`" + `. Only files directly inside a
route directory are read; sub-directories are ignored.

## Structure

` + "```" + `markdown
---
title: Getting started        # OPTIONAL, used for the page title
slug: getting-started         # OPTIONAL, overrides the file-name slug
---

# Getting started

Body text in Markdown. {{box class="yellow"}}Shortcodes work too.{{/box}}
` + "```" + `

## Rules

1. **Front matter is optional.** When present it is YAML between ` + "`" + `---` + "`" + ` fences
   (or TOML between ` + "`" + `+++` + "`" + ` fences) at the very start of the file.
2. **Slug.** A non-empty ` + "`" + `slug` + "`" + ` key wins as written. Otherwise the file name
   without its extension, with every space replaced by ` + "`" + `-` + "`" + `:
   ` + "`" + `b note.md` + "`" + ` becomes ` + "`" + `b-note` + "`" + `.
3. **Slugs are unique per route.** A second file with the same slug is skipped
   (or fails the build when ` + "`" + `markdown.on_invalid: fail` + "`" + `).
4. **Invalid front matter** is handled the same way: skipped with a warning by
   default.
5. **Permalinks** come from the route, ` + "`" + `/<slug>/` + "`" + ` for the blog route.
6. **Shortcodes** are ` + "`" + `{{name prop="v"}}content{{/name}}` + "`" + ` or ` + "`" + `{{name /}}` + "`" + `.
   Built-ins: ` + "`" + `box` + "`" + ` (prop ` + "`" + `class` + "`" + `) and ` + "`" + `numberOfPages` + "`" + `.
   Unknown shortcodes are left in the page untouched.

## Data available to a content page

| Key           | Value                                   |
|---------------|-----------------------------------------|
| ` + "`" + `frontmatter` + "`" + ` | the parsed front matter                 |
| ` + "`" + `html` + "`" + `        | the body rendered from Markdown to HTML |
`
