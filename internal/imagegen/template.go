package imagegen

import (
	"ai-news-posts/internal/models"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// 模板图片尺寸(LinkedIn 推荐的分享图尺寸)
const (
	TemplateWidth  = 1200
	TemplateHeight = 630
)

var (
	backgroundColor = color.RGBA{0x0a, 0x0e, 0x27, 0xff}
	accentColor     = color.RGBA{0x00, 0xd4, 0xff, 0xff}
	textColor       = color.RGBA{0xff, 0xff, 0xff, 0xff}
	footerColor     = color.RGBA{0x88, 0x88, 0x88, 0xff}
)

const (
	titleWrapWidth = 35
	titleMaxLines  = 2
	footerText     = "AI Content Helper • LinkedIn Post"
)

// TemplateRenderer 在本地绘制固定版式的配图
type TemplateRenderer struct {
	title    font.Face
	subtitle font.Face
	brand    font.Face
}

// NewTemplateRenderer 加载字体。fontPath 指向 TTF/OTF 文件，为空或加载失败时使用内置字体。
func NewTemplateRenderer(fontPath string) *TemplateRenderer {
	bold, regular := gobold.TTF, goregular.TTF
	if fontPath != "" {
		if data, err := os.ReadFile(fontPath); err == nil {
			bold, regular = data, data
		}
	}
	return &TemplateRenderer{
		title:    loadFace(bold, 42),
		subtitle: loadFace(regular, 24),
		brand:    loadFace(regular, 18),
	}
}

// loadFace 解析字体失败时退回到 basicfont
func loadFace(data []byte, size float64) font.Face {
	f, err := opentype.Parse(data)
	if err != nil {
		return basicfont.Face7x13
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return basicfont.Face7x13
	}
	return face
}

// Render 绘制模板图片并返回 PNG 字节
func (r *TemplateRenderer) Render(a models.Article) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, TemplateWidth, TemplateHeight))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: backgroundColor}, image.Point{}, draw.Src)

	title := strings.TrimSpace(a.Title)
	if title == "" {
		title = "AI Innovation News"
	}
	lines := WrapText(title, titleWrapWidth)
	if len(lines) > titleMaxLines {
		lines = lines[:titleMaxLines]
	}

	y := 120
	for _, line := range lines {
		drawText(img, r.title, textColor, 60, y, line)
		y += 50
	}

	// 装饰线
	draw.Draw(img, image.Rect(60, y+20, 400, y+25), &image.Uniform{C: accentColor}, image.Point{}, draw.Src)

	source := strings.ToUpper(a.SourceDomain)
	if source == "" {
		source = "AI NEWS"
	}
	drawText(img, r.subtitle, accentColor, 60, y+50, "● "+source)

	drawText(img, r.brand, footerColor, 60, TemplateHeight-80, footerText)

	for i := 0; i < 3; i++ {
		fillCircle(img, TemplateWidth-200+i*30, 150+i*40, 15, accentColor)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("编码PNG失败: %w", err)
	}
	return buf.Bytes(), nil
}

// drawText 以 (x, top) 为文字左上角绘制一行文字
func drawText(dst draw.Image, face font.Face, c color.Color, x, top int, text string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, top+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}

// fillCircle 在 (x, y) 为左上角、直径为 size 的方框内画实心圆
func fillCircle(img *image.RGBA, x, y, size int, c color.RGBA) {
	r := float64(size) / 2
	cx, cy := float64(x)+r, float64(y)+r
	for py := y; py <= y+size; py++ {
		for px := x; px <= x+size; px++ {
			dx, dy := float64(px)+0.5-cx, float64(py)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(px, py, c)
			}
		}
	}
}

// WrapText 按单词折行，每行不超过 width 个字符，超长单词按宽度拆开
func WrapText(text string, width int) []string {
	var (
		lines []string
		line  []rune
	)
	for _, word := range strings.Fields(text) {
		w := []rune(word)
		if len(w) > width {
			if len(line) > 0 {
				lines = append(lines, string(line))
				line = nil
			}
			for len(w) > width {
				lines = append(lines, string(w[:width]))
				w = w[width:]
			}
		}
		switch {
		case len(line) == 0:
			line = append(line, w...)
		case len(line)+1+len(w) <= width:
			line = append(append(line, ' '), w...)
		default:
			lines = append(lines, string(line))
			line = append([]rune(nil), w...)
		}
	}
	if len(line) > 0 {
		lines = append(lines, string(line))
	}
	return lines
}
