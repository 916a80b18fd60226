package shortcode

import (
	"context"
	"fmt"
	"html"
	"strconv"
)

// Box wraps its content in a styled box: {{box class="yellow"}}...{{/box}}.
func Box() Definition {
	return Definition{
		Name: "box",
		Run: func(_ context.Context, args Args) (Result, error) {
			return Result{
				HTML: fmt.Sprintf(`<div class="box %s">%s</div>`, html.EscapeString(args.Props["class"]), args.Content),
				CSS:  ".box{border:1px solid red;padding:1rem;margin:1rem 0}.box.yellow{background:lightyellow}",
			}, nil
		},
	}
}

// NumberOfPages expands to the number of requests the site renders.
func NumberOfPages() Definition {
	return Definition{
		Name: "numberOfPages",
		Run: func(_ context.Context, args Args) (Result, error) {
			return Result{HTML: strconv.Itoa(len(args.AllRequests))}, nil
		},
	}
}

// Builtins returns the shortcodes every site gets.
func Builtins() []Definition {
	return []Definition{Box(), NumberOfPages()}
}
