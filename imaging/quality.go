package imaging

import (
	"image"
	"image/color"
	"math"
)

// Quality summarizes capture quality for a decoded image. Overall is the
// fraction of the four per-metric gates the image passes.
type Quality struct {
	Sharpness       float64 `json:"sharpness"`
	Brightness      float64 `json:"brightness"`
	Contrast        float64 `json:"contrast"`
	ResolutionScore float64 `json:"resolution_score"`
	Overall         float64 `json:"overall_quality"`
}

// AnalyzeQuality computes sharpness (Laplacian variance), brightness (mean
// intensity), contrast (intensity stddev) and a normalized resolution score.
func AnalyzeQuality(img image.Image) Quality {
	gray := toGray(img)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n == 0 {
		return Quality{}
	}

	var sum, sumSq float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			v := float64(gray.GrayAt(x, y).Y)
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	contrast := math.Sqrt(variance)

	sharp := laplacianVariance(gray)

	res := float64(w*h) / 100000
	if res > 1 {
		res = 1
	}

	q := Quality{
		Sharpness:       sharp,
		Brightness:      mean,
		Contrast:        contrast,
		ResolutionScore: res,
	}
	if q.Sharpness > 100 {
		q.Overall += 0.25
	}
	if q.Brightness >= 50 && q.Brightness <= 200 {
		q.Overall += 0.25
	}
	if q.Contrast > 30 {
		q.Overall += 0.25
	}
	if q.ResolutionScore > 0.5 {
		q.Overall += 0.25
	}
	return q
}

// laplacianVariance measures focus as the variance of the 4-neighbor
// Laplacian response.
func laplacianVariance(gray *image.Gray) float64 {
	b := gray.Bounds()
	if b.Dx() < 3 || b.Dy() < 3 {
		return 0
	}
	var sum, sumSq float64
	n := 0
	for y := b.Min.Y + 1; y < b.Max.Y-1; y++ {
		for x := b.Min.X + 1; x < b.Max.X-1; x++ {
			v := -4*int(gray.GrayAt(x, y).Y) +
				int(gray.GrayAt(x-1, y).Y) + int(gray.GrayAt(x+1, y).Y) +
				int(gray.GrayAt(x, y-1).Y) + int(gray.GrayAt(x, y+1).Y)
			f := float64(v)
			sum += f
			sumSq += f * f
			n++
		}
	}
	if n == 0 {
		return 0
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return variance
}

func grayPix(v int) color.Gray {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return color.Gray{Y: uint8(v)}
}
