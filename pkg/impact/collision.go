package impact

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is a device position in flat Cartesian coordinates (metres).
type Point = r2.Vec

// CollisionRisk estimates the probability that an animal drifting with the
// current meets a device. Parallel transects aligned with the current are
// swept across the bounding box of the array; the hit rate is the share of
// transects that touch at least one device disk of radius size, scaled by
// the immersed fraction of the water column. The result is clamped to [0, 1].
//
// Arrays with at most one device carry no risk.
func CollisionRisk(devices []Point, size, immersedHeight, waterDepth, currentDirection float64) (float64, error) {
	if len(devices) <= 1 {
		return 0, nil
	}
	if !(size > 0) || math.IsInf(size, 0) {
		return 0, fmt.Errorf("%w: device size must be positive and finite, got %g", ErrInvalidInput, size)
	}
	if !(waterDepth > 0) {
		return 0, fmt.Errorf("%w: water depth must be positive, got %g", ErrInvalidInput, waterDepth)
	}
	if math.IsNaN(currentDirection) || math.IsInf(currentDirection, 0) {
		return 0, fmt.Errorf("%w: current direction must be finite, got %g", ErrInvalidInput, currentDirection)
	}

	lines, hits := sweep(devices, size, currentDirection)
	if lines == 0 {
		return 0, nil
	}
	risk := float64(hits) / float64(lines) * immersedHeight / waterDepth
	return math.Max(0, math.Min(risk, 1)), nil
}

// sweep counts the transects crossing the array and those touching a device.
func sweep(devices []Point, size, direction float64) (lines, hits int) {
	lo, hi := bounds(devices)

	direction = math.Mod(direction, 360)
	if direction < 0 {
		direction += 360
	}
	angle := direction * math.Pi / 180
	sin, cos, tan := math.Sin(angle), math.Cos(angle), math.Tan(angle)

	lx := hi.X - lo.X
	if sin != 0 {
		lx = math.Abs(size / sin)
	}
	ly := hi.Y - lo.Y
	if cos != 0 {
		ly = math.Abs(size / cos)
	}

	xStart, xEnd := lo.X, hi.X
	if direction > 90 && direction <= 270 {
		xStart, xEnd = hi.X, lo.X
	}
	yStart, yEnd := lo.Y, hi.Y
	if direction > 180 && direction <= 360 {
		yStart, yEnd = hi.Y, lo.Y
	}

	count := func(a, b Point) {
		lines++
		if touchesAny(devices, size, a, b) {
			hits++
		}
	}

	// Transects starting on the x axis. A current along the x axis never
	// crosses it, so this family is empty.
	if tan != 0 {
		for i, x := 0, lo.X; x <= hi.X; {
			count(Point{X: x, Y: yStart}, Point{X: (yEnd-yStart)/tan + x, Y: yEnd})
			if lx <= 0 {
				break
			}
			i++
			x = lo.X + 2*lx*float64(i)
		}
	}

	// Transects starting on the y axis.
	for i, y := 0, lo.Y; y <= hi.Y; {
		count(Point{X: xStart, Y: y}, Point{X: xEnd, Y: (xEnd-xStart)*tan + y})
		if ly <= 0 {
			break
		}
		i++
		y = lo.Y + 2*ly*float64(i)
	}
	return lines, hits
}

func bounds(points []Point) (lo, hi Point) {
	lo, hi = points[0], points[0]
	for _, p := range points[1:] {
		lo.X, lo.Y = math.Min(lo.X, p.X), math.Min(lo.Y, p.Y)
		hi.X, hi.Y = math.Max(hi.X, p.X), math.Max(hi.Y, p.Y)
	}
	return lo, hi
}

func touchesAny(devices []Point, radius float64, a, b Point) bool {
	for _, d := range devices {
		if segmentDistance(d, a, b) <= radius {
			return true
		}
	}
	return false
}

// segmentDistance is the distance from p to the closed segment ab.
func segmentDistance(p, a, b Point) float64 {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return r2.Norm(r2.Sub(p, a))
	}
	t := r2.Dot(r2.Sub(p, a), ab) / l2
	t = math.Max(0, math.Min(t, 1))
	return r2.Norm(r2.Sub(p, r2.Add(a, r2.Scale(t, ab))))
}

// VesselCollisionRisk is the share of the lease area swept by vessels, each
// taken as a disk of diameter size, capped at 1.
func VesselCollisionRisk(vessels, size, leaseArea float64) float64 {
	area := math.Pi * math.Pow(size/2, 2)
	return math.Min(vessels*area/leaseArea, 1)
}

// Devices converts a [[x...], [y...]] coordinate pair into points.
func Devices(coords [][]float64) ([]Point, error) {
	if len(coords) == 0 {
		return nil, nil
	}
	if len(coords) != 2 {
		return nil, fmt.Errorf("%w: device coordinates need an x row and a y row, got %d rows", ErrInvalidInput, len(coords))
	}
	xs, ys := coords[0], coords[1]
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x coordinates for %d y coordinates", ErrInvalidInput, len(xs), len(ys))
	}
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Point{X: xs[i], Y: ys[i]}
	}
	return points, nil
}
