package feature_extraction

import "math"

// dctBasis returns the first n rows of the orthonormal DCT-II matrix of size
// size, so that dct(x)[k] = sum_j basis[k][j] * x[j].
func dctBasis(n, size int) [][]float64 {
	basis := make([][]float64, n)

	for k := 0; k < n; k++ {
		scale := math.Sqrt(2.0 / float64(size))
		if k == 0 {
			scale = math.Sqrt(1.0 / float64(size))
		}

		row := make([]float64, size)
		for j := 0; j < size; j++ {
			row[j] = scale * math.Cos(math.Pi*float64(k)*(2*float64(j)+1)/(2*float64(size)))
		}

		basis[k] = row
	}

	return basis
}
