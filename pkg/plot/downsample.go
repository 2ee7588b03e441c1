package plot

import "github.com/itohio/gospeed/pkg/session"

// Downsample reduces points to at most maxPoints by decimation.
// Destination-based: reuses dst if it has sufficient capacity, otherwise allocates new.
// The newest point is always kept so the trace reaches the right edge.
func Downsample(dst []session.Point, points []session.Point, maxPoints int) []session.Point {
	if maxPoints <= 0 || len(points) <= maxPoints {
		if cap(dst) >= len(points) {
			dst = dst[:len(points)]
			copy(dst, points)
			return dst
		}
		result := make([]session.Point, len(points))
		copy(result, points)
		return result
	}

	if cap(dst) >= maxPoints {
		dst = dst[:0]
	} else {
		dst = make([]session.Point, 0, maxPoints)
	}

	step := float64(len(points)) / float64(maxPoints)
	for i := range maxPoints - 1 {
		dst = append(dst, points[int(float64(i)*step)])
	}
	dst = append(dst, points[len(points)-1])

	return dst
}
