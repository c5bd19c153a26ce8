package dsp

import "math"

// fftInPlace computes an in-place radix-2 Cooley-Tukey FFT over re/im.
// Bit-reversal permutation first, then log2(n) butterfly passes with
// per-pass twiddle factors. len(re) == len(im) and a power of two.
func fftInPlace(re, im []float64) {
	n := len(re)

	// Bit-reversal permutation.
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j |= bit
		if i < j {
			re[i], re[j] = re[j], re[i]
			im[i], im[j] = im[j], im[i]
		}
	}

	// Iterative butterflies, doubling the sub-transform length each pass.
	for length := 2; length <= n; length <<= 1 {
		ang := -2.0 * math.Pi / float64(length)
		wRe := math.Cos(ang)
		wIm := math.Sin(ang)
		for start := 0; start < n; start += length {
			curRe, curIm := 1.0, 0.0
			half := length / 2
			for k := 0; k < half; k++ {
				evenRe := re[start+k]
				evenIm := im[start+k]
				oddRe := re[start+k+half]*curRe - im[start+k+half]*curIm
				oddIm := re[start+k+half]*curIm + im[start+k+half]*curRe
				re[start+k] = evenRe + oddRe
				im[start+k] = evenIm + oddIm
				re[start+k+half] = evenRe - oddRe
				im[start+k+half] = evenIm - oddIm
				curRe, curIm = curRe*wRe-curIm*wIm, curRe*wIm+curIm*wRe
			}
		}
	}
}
