package model

// Canvas dimensions strokes are validated against
const (
	CanvasWidth  = 800
	CanvasHeight = 600
)

// StrokeKind tags the stroke command union
type StrokeKind string

const (
	StrokeDraw StrokeKind = "stroke"
	StrokeFill StrokeKind = "fill"
)

// StrokeTool identifies the drawing tool for a stroke command
type StrokeTool string

const (
	ToolPen    StrokeTool = "pen"
	ToolEraser StrokeTool = "eraser"
)

// StrokeCommand is a single drawing operation relayed between clients.
// Coordinates are canvas pixels; the server validates bounds only and
// never rasterizes.
type StrokeCommand struct {
	Kind  StrokeKind `json:"kind"`
	Tool  StrokeTool `json:"tool,omitempty"`
	Color int        `json:"color"`
	Size  int        `json:"size,omitempty"`
	X1    int        `json:"x1"`
	Y1    int        `json:"y1"`
	X2    int        `json:"x2,omitempty"`
	Y2    int        `json:"y2,omitempty"`
}

// InBounds reports whether every coordinate of the command lies on the canvas
func (c StrokeCommand) InBounds() bool {
	switch c.Kind {
	case StrokeDraw:
		return inCanvas(c.X1, c.Y1) && inCanvas(c.X2, c.Y2)
	case StrokeFill:
		return inCanvas(c.X1, c.Y1)
	default:
		return false
	}
}

func inCanvas(x, y int) bool {
	return x >= 0 && x < CanvasWidth && y >= 0 && y < CanvasHeight
}
