package service

import "testing"

func TestPlanDragPathHorizontal(t *testing.T) {
	path := PlanDragPath(0, 0, 100, 0)

	if len(path) != 10 {
		t.Fatalf("expected 10 steps, got %d", len(path))
	}
	for i := 0; i < 9; i++ {
		step := path[i]
		if step.Absolute {
			t.Errorf("step %d should be relative", i)
		}
		if step.DX != 10 || step.DY != 0 {
			t.Errorf("step %d = (%d,%d), want (10,0)", i, step.DX, step.DY)
		}
	}

	last := path[9]
	if !last.Absolute || last.X != 100 || last.Y != 0 {
		t.Errorf("final step = %+v, want absolute move to (100,0)", last)
	}
}

func TestPlanDragPathZeroDistance(t *testing.T) {
	path := PlanDragPath(50, 50, 50, 50)

	if len(path) != 1 {
		t.Fatalf("expected 1 step, got %d", len(path))
	}
	if !path[0].Absolute || path[0].X != 50 || path[0].Y != 50 {
		t.Errorf("step = %+v, want absolute move to (50,50)", path[0])
	}
}

func TestPlanDragPathAlwaysEndsAtTarget(t *testing.T) {
	cases := []struct {
		startX, startY, endX, endY int
	}{
		{0, 0, 300, 400},
		{100, 200, 0, 0},
		{7, 13, 23, 5},
		{0, 0, 0, 95},
		{-10, -10, 10, 10},
	}

	for _, tc := range cases {
		path := PlanDragPath(tc.startX, tc.startY, tc.endX, tc.endY)
		if len(path) == 0 {
			t.Fatalf("empty path for %+v", tc)
		}
		last := path[len(path)-1]
		if !last.Absolute || last.X != tc.endX || last.Y != tc.endY {
			t.Errorf("path for %+v ends at %+v, want absolute (%d,%d)",
				tc, last, tc.endX, tc.endY)
		}
		for i := 0; i < len(path)-1; i++ {
			if path[i].Absolute {
				t.Errorf("intermediate step %d for %+v should be relative", i, tc)
			}
		}
	}
}

func TestPlanDragPathStepCount(t *testing.T) {
	// ceil(distance / 10), minimum 1.
	cases := []struct {
		endX, want int
	}{
		{5, 1},
		{10, 1},
		{11, 2},
		{95, 10},
		{100, 10},
		{101, 11},
	}
	for _, tc := range cases {
		path := PlanDragPath(0, 0, tc.endX, 0)
		if len(path) != tc.want {
			t.Errorf("distance %d: %d steps, want %d", tc.endX, len(path), tc.want)
		}
	}
}
