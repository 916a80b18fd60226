// Package hook implements the ordered, named extension points that plugins
// register callbacks into. Each point folds a Payload through its hooks in
// priority order; a hook returns the updated payload instead of mutating it.
package hook

import (
	"context"

	"github.com/starford/hookpress/internal/models"
	"github.com/starford/hookpress/internal/shortcode"
)

// Point names an extension point of the pipeline.
type Point string

const (
	PointBootstrap   Point = "bootstrap"
	PointAllRequests Point = "allRequests"
	PointData        Point = "data"
	PointHTML        Point = "html"
)

// Priority bounds. Higher priority runs first.
const (
	MinPriority     = 1
	MaxPriority     = 100
	DefaultPriority = 50
)

// PointInfo documents an extension point.
type PointInfo struct {
	Point       Point    `json:"hook"`
	Description string   `json:"description"`
	Context     string   `json:"context"`
	Mutable     []string `json:"mutable"`
}

var points = []PointInfo{
	{
		Point:       PointBootstrap,
		Description: "Runs once after plugins are initialised and before any request is collected.",
		Context:     "Populate the shared data object with content every page may need.",
		Mutable:     []string{"data"},
	},
	{
		Point:       PointAllRequests,
		Description: "Runs once after every route has returned its requests.",
		Context:     "Add, remove or reorder the requests that will be rendered.",
		Mutable:     []string{"allRequests"},
	},
	{
		Point:       PointData,
		Description: "Runs for each request after the route's data function.",
		Context:     "Inject request-specific data before the page is rendered.",
		Mutable:     []string{"data"},
	},
	{
		Point:       PointHTML,
		Description: "Runs for each request on the fully rendered page.",
		Context:     "Transform the final HTML, e.g. minify or inject markup.",
		Mutable:     []string{"html"},
	},
}

// Points returns the catalog of extension points in pipeline order.
func Points() []PointInfo {
	out := make([]PointInfo, len(points))
	copy(out, points)
	return out
}

// Known reports whether p is a registered extension point.
func Known(p Point) bool {
	for _, info := range points {
		if info.Point == p {
			return true
		}
	}
	return false
}

// Payload is the state threaded through the hooks of one point. Which fields
// are meaningful depends on the point.
type Payload struct {
	Data        models.Data
	Request     models.Request
	AllRequests []models.Request
	HTML        string
}

// Func is a hook callback.
type Func func(ctx context.Context, p Payload) (Payload, error)

// Hook is a named callback bound to an extension point.
type Hook struct {
	Point       Point
	Name        string
	Description string
	Priority    int
	Run         Func
}

// Settings is the shared configuration object handed to plugins.
type Settings struct {
	RootDir string
	SrcDir  string
	DistDir string
	Origin  string
	Prefix  string
}

// Contribution is what a plugin adds to the pipeline.
type Contribution struct {
	Hooks      []Hook
	Shortcodes []shortcode.Definition
}

// Plugin is initialised once at bootstrap.
type Plugin interface {
	Name() string
	Init(ctx context.Context, settings Settings) (Contribution, error)
}
