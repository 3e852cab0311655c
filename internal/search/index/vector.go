package index

import "math"

// distance returns 1 - cosine(q, v), in [0, 2]. A zero vector is
// unrelated to everything and sits at distance 1.
func distance(q, v []float32) (float64, error) {
	if len(q) != len(v) {
		return 0, ErrVectorLengthMismatch
	}
	var dot, qq, vv float64
	for i, x := range q {
		y := float64(v[i])
		dot += float64(x) * y
		qq += float64(x) * float64(x)
		vv += y * y
	}
	if qq == 0 || vv == 0 {
		return 1, nil
	}
	return 1 - dot/(math.Sqrt(qq)*math.Sqrt(vv)), nil
}

// unitLength returns a copy of v scaled to unit L2 norm. Zero vectors are
// copied unchanged.
func unitLength(v []float32) []float32 {
	out := make([]float32, len(v))
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		copy(out, v)
		return out
	}
	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
