// Package fft implements a radix-2 Cooley-Tukey FFT over complex128,
// used only to accelerate the rating-engine convolution in
// internal/rating. No FFT or DSP library appears anywhere in the example
// corpus this module was grounded on, so this is the one piece of the
// core built directly on the standard library (math/cmplx).
package fft

import "math/cmplx"

// Transform computes the DFT (inverse=false) or inverse DFT (inverse=true)
// of x in place, where len(x) must be a power of two. Callers needing a
// non-power-of-two convolution zero-pad before calling.
func Transform(x []complex128, inverse bool) {
	n := len(x)
	if n <= 1 {
		return
	}
	bitReverse(x)

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		angle := -2 * 3.141592653589793 / float64(size)
		if inverse {
			angle = -angle
		}
		wn := cmplx.Rect(1, angle)
		for start := 0; start < n; start += size {
			w := complex(1, 0)
			for k := 0; k < half; k++ {
				u := x[start+k]
				v := x[start+k+half] * w
				x[start+k] = u + v
				x[start+k+half] = u - v
				w *= wn
			}
		}
	}

	if inverse {
		for i := range x {
			x[i] /= complex(float64(n), 0)
		}
	}
}

func bitReverse(x []complex128) {
	n := len(x)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			x[i], x[j] = x[j], x[i]
		}
	}
}

// NextPowerOfTwo returns the smallest power of two >= n.
func NextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Convolve computes the linear convolution of real-valued a and b via the
// FFT, returning a result of length len(a)+len(b)-1.
func Convolve(a, b []float64) []float64 {
	outLen := len(a) + len(b) - 1
	if outLen <= 0 {
		return nil
	}
	size := NextPowerOfTwo(outLen)

	fa := make([]complex128, size)
	fb := make([]complex128, size)
	for i, v := range a {
		fa[i] = complex(v, 0)
	}
	for i, v := range b {
		fb[i] = complex(v, 0)
	}

	Transform(fa, false)
	Transform(fb, false)
	for i := range fa {
		fa[i] *= fb[i]
	}
	Transform(fa, true)

	result := make([]float64, outLen)
	for i := 0; i < outLen; i++ {
		result[i] = real(fa[i])
	}
	return result
}
