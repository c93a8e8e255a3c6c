// Package imaging decodes uploaded package photographs and prepares them for
// OCR. It produces the preprocessing variants the recognition engines consume
// (grayscale, denoised, contrast-enhanced, sharpened, binarized) and a set of
// quality metrics used to flag low-quality captures.
package imaging

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"image/png"

	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/image/draw"
)

// ErrInvalidImage reports bytes that cannot be decoded as an image, or exceed
// the size cap. It is the only pipeline error surfaced to callers.
var ErrInvalidImage = errors.New("imaging: invalid image")

// MaxImageBytes caps accepted uploads at 10 MiB.
const MaxImageBytes = 10 << 20

// minOCRWidth is the width below which images are upscaled before OCR.
const minOCRWidth = 640

// Decode validates and decodes an encoded image payload.
func Decode(data []byte) (image.Image, error) {
	if len(data) == 0 || len(data) > MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidImage, len(data))
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, nil
}

// Validate reports whether the payload decodes within the size cap.
func Validate(data []byte) bool {
	_, err := Decode(data)
	return err == nil
}

// Fingerprint returns a stable hex digest of the raw payload, used as the
// cache and audit key for an upload.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Variants holds the preprocessing stages derived from one source image.
type Variants struct {
	Original  image.Image
	Grayscale *image.Gray
	Denoised  *image.Gray
	Enhanced  *image.Gray
	Sharpened *image.Gray
	Binary    *image.Gray
}

// Preprocess derives all OCR preprocessing variants from img. Small captures
// are upscaled first so engine layout heuristics have enough pixels to work
// with.
func Preprocess(img image.Image) Variants {
	img = upscale(img)
	gray := toGray(img)
	denoised := boxBlur(gray)
	enhanced := stretchContrast(denoised)
	sharpened := sharpen(enhanced)
	binary := binarize(enhanced, otsuThreshold(enhanced))
	return Variants{
		Original:  img,
		Grayscale: gray,
		Denoised:  denoised,
		Enhanced:  enhanced,
		Sharpened: sharpened,
		Binary:    binary,
	}
}

// EncodePNG serializes img for engines that consume encoded bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func upscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() >= minOCRWidth || b.Dx() == 0 {
		return img
	}
	scale := float64(minOCRWidth) / float64(b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, minOCRWidth, int(float64(b.Dy())*scale)))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(b)
	draw.Draw(gray, b, img, b.Min, draw.Src)
	return gray
}

// boxBlur applies a 3x3 mean filter, the denoising pass before contrast
// enhancement.
func boxBlur(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			var sum, n int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					px, py := x+dx, y+dy
					if px < b.Min.X || px >= b.Max.X || py < b.Min.Y || py >= b.Max.Y {
						continue
					}
					sum += int(src.GrayAt(px, py).Y)
					n++
				}
			}
			dst.SetGray(x, y, grayPix(sum/n))
		}
	}
	return dst
}

// stretchContrast maps the observed intensity range onto the full [0,255]
// interval.
func stretchContrast(src *image.Gray) *image.Gray {
	b := src.Bounds()
	lo, hi := 255, 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := int(src.GrayAt(x, y).Y)
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	dst := image.NewGray(b)
	if hi <= lo {
		copy(dst.Pix, src.Pix)
		return dst
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := int(src.GrayAt(x, y).Y)
			dst.SetGray(x, y, grayPix((v-lo)*255/(hi-lo)))
		}
	}
	return dst
}

// sharpen applies a 3x3 edge-enhancement kernel with a center weight of 9.
func sharpen(src *image.Gray) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := 9 * int(src.GrayAt(x, y).Y)
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					v -= int(src.GrayAt(clampX(b, x+dx), clampY(b, y+dy)).Y)
				}
			}
			dst.SetGray(x, y, grayPix(v))
		}
	}
	return dst
}

// otsuThreshold picks the binarization threshold maximizing between-class
// variance of the gray histogram.
func otsuThreshold(src *image.Gray) int {
	var hist [256]int
	total := 0
	b := src.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			hist[src.GrayAt(x, y).Y]++
			total++
		}
	}
	if total == 0 {
		return 128
	}
	var sum float64
	for i, c := range hist {
		sum += float64(i) * float64(c)
	}
	var sumB, wB float64
	best, bestVar := 128, 0.0
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		v := wB * wF * (mB - mF) * (mB - mF)
		if v > bestVar {
			bestVar = v
			best = t
		}
	}
	return best
}

func binarize(src *image.Gray, threshold int) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if int(src.GrayAt(x, y).Y) > threshold {
				dst.SetGray(x, y, grayPix(255))
			}
		}
	}
	return dst
}

func clampX(b image.Rectangle, x int) int {
	if x < b.Min.X {
		return b.Min.X
	}
	if x >= b.Max.X {
		return b.Max.X - 1
	}
	return x
}

func clampY(b image.Rectangle, y int) int {
	if y < b.Min.Y {
		return b.Min.Y
	}
	if y >= b.Max.Y {
		return b.Max.Y - 1
	}
	return y
}
