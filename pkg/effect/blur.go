package effect

import (
	"image"

	"github.com/disintegration/imaging"
)

// boxBlur averages every channel over a (2rx+1)x(2ry+1) window, repeated
// iterations times. Samples outside the image are clamped to the nearest
// edge pixel, so every output is a mean over the full window.
func boxBlur(src *image.NRGBA, rx, ry, iterations int) *image.NRGBA {
	cur := imaging.Clone(src)
	tmp := image.NewNRGBA(cur.Rect)

	for i := 0; i < iterations; i++ {
		blurRows(tmp, cur, rx)
		blurCols(cur, tmp, ry)
	}

	return cur
}

func blurRows(dst, src *image.NRGBA, r int) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := 0; y < h; y++ {
		in := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		slide(out, in, w, 4, r)
	}
}

func blurCols(dst, src *image.NRGBA, r int) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	col := make([]uint8, h*4)
	res := make([]uint8, h*4)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			copy(col[y*4:y*4+4], src.Pix[y*src.Stride+x*4:])
		}
		slide(res, col, h, 4, r)
		for y := 0; y < h; y++ {
			copy(dst.Pix[y*dst.Stride+x*4:y*dst.Stride+x*4+4], res[y*4:])
		}
	}
}

// slide runs a running-sum window of radius r over n pixels of size bpp.
func slide(out, in []uint8, n, bpp, r int) {
	size := 2*r + 1
	last := n - 1
	for c := 0; c < bpp; c++ {
		sum := 0
		for i := -r; i <= r; i++ {
			sum += int(in[clamp(i, 0, last)*bpp+c])
		}
		for i := 0; i < n; i++ {
			out[i*bpp+c] = uint8((sum + size/2) / size)
			sum += int(in[clamp(i+r+1, 0, last)*bpp+c])
			sum -= int(in[clamp(i-r, 0, last)*bpp+c])
		}
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
