package markdown

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	"github.com/tsawler/pagemd/content"
)

// maxEmbedDim is the largest width or height embedded images keep. Bigger
// pixmaps are downscaled before base64 encoding so the markdown stays
// manageable.
const maxEmbedDim = 1024

// imageMarkdown produces the markdown reference for an image: a file link
// when dir is set, a data URI when embed is set, otherwise nothing.
func (w *Writer) imageMarkdown(img *content.Image, pageIndex, seq int) (string, error) {
	switch {
	case w.config.ImageDir != "":
		name := fmt.Sprintf("%s-%d-%d.png", w.config.ImageBaseName, pageIndex, seq)
		if err := saveImagePNG(filepath.Join(w.config.ImageDir, name), img.Data); err != nil {
			return "", err
		}
		return fmt.Sprintf("\n![%s](%s)\n", name, name), nil
	case w.config.EmbedImages:
		uri, err := imageDataURI(img.Data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("\n![](%s)\n", uri), nil
	default:
		return "", nil
	}
}

// saveImagePNG decodes the raw image bytes and writes them as a PNG file.
func saveImagePNG(path string, data []byte) error {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decoding image for %s: %w", path, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// imageDataURI encodes the image as a base64 PNG data URI, downscaling
// when either dimension exceeds maxEmbedDim.
func imageDataURI(data []byte) (string, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("decoding image for embedding: %w", err)
	}
	src = downscale(src, maxEmbedDim)

	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return "", fmt.Errorf("encoding embedded image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// downscale shrinks src proportionally so neither dimension exceeds maxDim.
// Images already small enough are returned unchanged.
func downscale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return src
	}
	scale := float64(maxDim) / float64(w)
	if h > w {
		scale = float64(maxDim) / float64(h)
	}
	dst := image.NewRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
