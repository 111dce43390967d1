package service

import "math"

// DragStep is one movement of an interpolated drag path. Intermediate
// steps are relative displacements; the final step is an absolute move to
// the exact target to eliminate rounding drift.
type DragStep struct {
	DX, DY   int
	Absolute bool
	X, Y     int
}

// PlanDragPath computes the ordered move sequence from start to end.
// One step is produced for every 10 euclidean pixels of distance
// (rounded up, minimum one step). Deterministic and side-effect free.
func PlanDragPath(startX, startY, endX, endY int) []DragStep {
	distX := float64(endX - startX)
	distY := float64(endY - startY)
	distance := math.Sqrt(distX*distX + distY*distY)

	steps := int(math.Ceil(distance / 10.0))
	if steps < 1 {
		steps = 1
	}

	stepX := distX / float64(steps)
	stepY := distY / float64(steps)

	path := make([]DragStep, 0, steps)
	for i := 0; i < steps-1; i++ {
		path = append(path, DragStep{DX: int(stepX), DY: int(stepY)})
	}
	path = append(path, DragStep{Absolute: true, X: endX, Y: endY})
	return path
}
