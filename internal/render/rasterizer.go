package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"storyreel/internal/scene"
	"storyreel/internal/services"
	"storyreel/internal/storyboard"
)

const ghostAlpha = 0x66

// Options configures the rasterizer backend.
type Options struct {
	Width  int
	Height int
	FPS    int
	Theme  Theme
	FFmpeg string
}

func (o Options) normalized() Options {
	out := o
	if out.Width <= 0 {
		out.Width = 1280
	}
	if out.Height <= 0 {
		out.Height = 720
	}
	if out.FPS <= 0 {
		out.FPS = 24
	}
	if out.FFmpeg == "" {
		out.FFmpeg = "ffmpeg"
	}
	if out.Theme.Colors == nil {
		out.Theme = DefaultTheme()
	}
	return out
}

// Rasterizer draws scene frames onto an RGBA canvas and encodes each still
// into a fixed-duration H.264 segment.
type Rasterizer struct {
	opts    Options
	fontSrc *opentype.Font
	encoder segmentEncoder
}

type segmentEncoder func(ctx context.Context, stillPath, outPath string, req Request, opts Options) error

// RasterizerOption customizes construction.
type RasterizerOption func(*Rasterizer)

// WithSegmentEncoder overrides the ffmpeg still-to-segment step (used in
// tests).
func WithSegmentEncoder(enc func(ctx context.Context, stillPath, outPath string, req Request) error) RasterizerOption {
	return func(r *Rasterizer) {
		if enc != nil {
			r.encoder = func(ctx context.Context, stillPath, outPath string, req Request, _ Options) error {
				return enc(ctx, stillPath, outPath, req)
			}
		}
	}
}

// NewRasterizer constructs the bundled rendering backend.
func NewRasterizer(opts Options, ropts ...RasterizerOption) (*Rasterizer, error) {
	src, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, services.Wrap(services.ErrRender, "render", "load font", "parse embedded font", err)
	}
	r := &Rasterizer{opts: opts.normalized(), fontSrc: src, encoder: encodeWithFFmpeg}
	for _, opt := range ropts {
		opt(r)
	}
	return r, nil
}

// RenderStep draws the frame, writes the still, and encodes the segment.
func (r *Rasterizer) RenderStep(ctx context.Context, req Request) (Segment, error) {
	if err := ctx.Err(); err != nil {
		return Segment{}, err
	}
	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return Segment{}, services.Wrap(services.ErrRender, "render", "prepare output", req.OutDir, err)
	}

	img, err := r.Draw(req.Frame)
	if err != nil {
		return Segment{}, err
	}

	base := fmt.Sprintf("step_%04d_%04d", req.Frame.FrameIndex, req.Frame.StepIndex)
	stillPath := filepath.Join(req.OutDir, base+".png")
	outPath := filepath.Join(req.OutDir, base+".mp4")

	if err := writePNG(stillPath, img); err != nil {
		return Segment{}, services.Wrap(services.ErrRender, "render", "write still", stillPath, err)
	}
	if err := r.encoder(ctx, stillPath, outPath, req, r.opts); err != nil {
		return Segment{}, services.Wrap(services.ErrRender, "render", "encode segment", outPath, err)
	}

	return Segment{
		FrameIndex: req.Frame.FrameIndex,
		StepIndex:  req.Frame.StepIndex,
		Path:       outPath,
		Duration:   req.Duration,
	}, nil
}

// Draw renders one frame to an RGBA image. Exposed so tests can check pixels
// without invoking ffmpeg.
func (r *Rasterizer) Draw(frame scene.Frame) (*image.RGBA, error) {
	opts := r.opts
	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Theme.Background), image.Point{}, draw.Src)

	for _, edge := range frame.Edges {
		r.drawEdge(img, edge, opts.Theme.Ink)
	}
	for _, ghost := range frame.Ghosts {
		if err := r.drawNode(img, ghost, true); err != nil {
			return nil, err
		}
	}
	for _, node := range frame.Nodes {
		if err := r.drawNode(img, node, false); err != nil {
			return nil, err
		}
	}
	if err := r.drawCaption(img, frame.Caption); err != nil {
		return nil, err
	}
	return img, nil
}

func (r *Rasterizer) drawNode(img *image.RGBA, node scene.PlacedNode, ghost bool) error {
	opts := r.opts
	cx := node.X * float64(opts.Width)
	cy := node.Y * float64(opts.Height)
	// Size is a marker area; scale its radius to the canvas width.
	radius := math.Sqrt(node.Size/math.Pi) * float64(opts.Width) / 1280

	fill := opts.Theme.NodeColor(node.Node.Color)
	ink := opts.Theme.Ink
	if ghost {
		fill = fade(opts.Theme.Ghost, ghostAlpha)
		ink = fade(opts.Theme.Ghost, ghostAlpha)
	}

	switch node.Node.Shape {
	case storyboard.ShapeBox:
		fillRect(img, cx-radius, cy-radius*0.7, cx+radius, cy+radius*0.7, fill)
	case storyboard.ShapeTriangle:
		fillPolygon(img, regularPolygon(cx, cy, radius, 3, -math.Pi/2), fill)
	case storyboard.ShapeDiamond:
		fillDiamond(img, cx, cy, radius, fill)
	case storyboard.ShapePentagon:
		fillPolygon(img, regularPolygon(cx, cy, radius, 5, -math.Pi/2), fill)
	case storyboard.ShapeHexagon:
		fillPolygon(img, regularPolygon(cx, cy, radius, 6, -math.Pi/2), fill)
	case storyboard.ShapeStar:
		fillPolygon(img, starPolygon(cx, cy, radius, radius*0.45), fill)
	case storyboard.ShapeOval:
		fillEllipse(img, cx, cy, radius*1.2, radius*0.8, fill)
	default: // circle, and the unknown-shape fallback decided at decode time
		fillEllipse(img, cx, cy, radius, radius, fill)
	}

	label := node.Node.Label
	if ghost {
		// Ghost labels are parenthesized so faded nodes read as residue, not
		// active content.
		label = "(" + label + ")"
	}
	return r.drawLabel(img, label, cx, cy+radius+4, node.FontPt, ink)
}

func (r *Rasterizer) drawEdge(img *image.RGBA, edge scene.Edge, ink color.RGBA) {
	opts := r.opts
	x0 := edge.FromX * float64(opts.Width)
	y0 := edge.FromY * float64(opts.Height)
	x1 := edge.ToX * float64(opts.Width)
	y1 := edge.ToY * float64(opts.Height)

	drawLine(img, x0, y0, x1, y1, 2, ink)

	// Arrowhead at the target end.
	angle := math.Atan2(y1-y0, x1-x0)
	const headLen = 14.0
	const headAngle = math.Pi / 7
	for _, side := range []float64{-1, 1} {
		hx := x1 - headLen*math.Cos(angle+side*headAngle)
		hy := y1 - headLen*math.Sin(angle+side*headAngle)
		drawLine(img, x1, y1, hx, hy, 2, ink)
	}
}

func (r *Rasterizer) drawCaption(img *image.RGBA, caption string) error {
	caption = strings.TrimSpace(caption)
	if caption == "" {
		return nil
	}
	opts := r.opts
	const captionPt = 16.0
	face, err := r.face(captionPt)
	if err != nil {
		return err
	}
	defer face.Close()

	lines := wrapText(caption, face, opts.Width-2*40)
	lineHeight := face.Metrics().Height.Ceil()
	y := opts.Height - 30 - lineHeight*(len(lines)-1)
	for _, line := range lines {
		width := font.MeasureString(face, line).Ceil()
		drawString(img, face, line, (opts.Width-width)/2, y, opts.Theme.Caption)
		y += lineHeight
	}
	return nil
}

func (r *Rasterizer) drawLabel(img *image.RGBA, label string, cx, topY float64, pt float64, ink color.RGBA) error {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	face, err := r.face(pt)
	if err != nil {
		return err
	}
	defer face.Close()
	width := font.MeasureString(face, label).Ceil()
	drawString(img, face, label, int(cx)-width/2, int(topY)+face.Metrics().Ascent.Ceil(), ink)
	return nil
}

func (r *Rasterizer) face(pt float64) (font.Face, error) {
	face, err := opentype.NewFace(r.fontSrc, &opentype.FaceOptions{
		Size:    pt * float64(r.opts.Width) / 640, // points scale with canvas
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, services.Wrap(services.ErrRender, "render", "size font", fmt.Sprintf("%.1fpt", pt), err)
	}
	return face, nil
}

func drawString(img *image.RGBA, face font.Face, text string, x, y int, ink color.RGBA) {
	drawer := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	drawer.DrawString(text)
}

func wrapText(text string, face font.Face, maxWidth int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if font.MeasureString(face, candidate).Ceil() > maxWidth {
			lines = append(lines, current)
			current = word
			continue
		}
		current = candidate
	}
	return append(lines, current)
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 float64, fill color.RGBA) {
	rect := image.Rect(int(x0), int(y0), int(x1), int(y1)).Intersect(img.Bounds())
	draw.Draw(img, rect, image.NewUniform(fill), image.Point{}, draw.Over)
}

func fillEllipse(img *image.RGBA, cx, cy, rx, ry float64, fill color.RGBA) {
	if rx <= 0 || ry <= 0 {
		return
	}
	bounds := img.Bounds()
	for y := int(cy - ry); y <= int(cy+ry); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		dy := (float64(y) - cy) / ry
		span := rx * math.Sqrt(math.Max(0, 1-dy*dy))
		for x := int(cx - span); x <= int(cx+span); x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			img.SetRGBA(x, y, blend(img.RGBAAt(x, y), fill))
		}
	}
}

func fillDiamond(img *image.RGBA, cx, cy, radius float64, fill color.RGBA) {
	bounds := img.Bounds()
	for y := int(cy - radius); y <= int(cy+radius); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		span := radius - math.Abs(float64(y)-cy)
		for x := int(cx - span); x <= int(cx+span); x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			img.SetRGBA(x, y, blend(img.RGBAAt(x, y), fill))
		}
	}
}

type vertex struct {
	x, y float64
}

// regularPolygon returns the vertices of an n-gon inscribed in the radius,
// with the first vertex at the rotation angle.
func regularPolygon(cx, cy, radius float64, sides int, rot float64) []vertex {
	pts := make([]vertex, sides)
	for i := range pts {
		a := rot + 2*math.Pi*float64(i)/float64(sides)
		pts[i] = vertex{cx + radius*math.Cos(a), cy + radius*math.Sin(a)}
	}
	return pts
}

// starPolygon returns a five-point star, alternating outer and inner radii
// starting from the top point.
func starPolygon(cx, cy, outer, inner float64) []vertex {
	pts := make([]vertex, 10)
	for i := range pts {
		r := outer
		if i%2 == 1 {
			r = inner
		}
		a := -math.Pi/2 + math.Pi*float64(i)/5
		pts[i] = vertex{cx + r*math.Cos(a), cy + r*math.Sin(a)}
	}
	return pts
}

// fillPolygon scanline-fills a simple polygon using even-odd crossings.
func fillPolygon(img *image.RGBA, pts []vertex, fill color.RGBA) {
	if len(pts) < 3 {
		return
	}
	minY, maxY := pts[0].y, pts[0].y
	for _, p := range pts[1:] {
		minY = math.Min(minY, p.y)
		maxY = math.Max(maxY, p.y)
	}
	bounds := img.Bounds()
	for y := int(minY); y <= int(maxY); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		fy := float64(y) + 0.5
		var xs []float64
		for i := range pts {
			a, b := pts[i], pts[(i+1)%len(pts)]
			if (a.y <= fy) == (b.y <= fy) {
				continue
			}
			xs = append(xs, a.x+(fy-a.y)/(b.y-a.y)*(b.x-a.x))
		}
		sort.Float64s(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(xs[i]); x <= int(xs[i+1]); x++ {
				if x < bounds.Min.X || x >= bounds.Max.X {
					continue
				}
				img.SetRGBA(x, y, blend(img.RGBAAt(x, y), fill))
			}
		}
	}
}

func drawLine(img *image.RGBA, x0, y0, x1, y1 float64, thickness float64, ink color.RGBA) {
	length := math.Hypot(x1-x0, y1-y0)
	if length == 0 {
		return
	}
	steps := int(length) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		px := x0 + t*(x1-x0)
		py := y0 + t*(y1-y0)
		fillEllipse(img, px, py, thickness/2, thickness/2, ink)
	}
}

func fade(c color.RGBA, alpha uint8) color.RGBA {
	c.A = alpha
	return c
}

func blend(dst, src color.RGBA) color.RGBA {
	if src.A == 0xff {
		return src
	}
	a := uint32(src.A)
	inv := 0xff - a
	return color.RGBA{
		R: uint8((uint32(src.R)*a + uint32(dst.R)*inv) / 0xff),
		G: uint8((uint32(src.G)*a + uint32(dst.G)*inv) / 0xff),
		B: uint8((uint32(src.B)*a + uint32(dst.B)*inv) / 0xff),
		A: 0xff,
	}
}

func writePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(file, img); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

func encodeWithFFmpeg(ctx context.Context, stillPath, outPath string, req Request, opts Options) error {
	args := []string{
		"-y",
		"-loop", "1",
		"-i", stillPath,
		"-t", fmt.Sprintf("%.3f", req.Duration.Seconds()),
		"-r", fmt.Sprintf("%d", opts.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		outPath,
	}
	cmd := exec.CommandContext(ctx, opts.FFmpeg, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
