package grid

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSpecValidate(t *testing.T) {
	for _, tc := range []struct {
		name string
		spec Spec
		ok   bool
	}{
		{"valid", Spec{SizeX: 2, SizeY: 1, SizeZ: 2, Spacing: 1}, true},
		{"empty lattice", Spec{Spacing: 1}, true},
		{"negative size", Spec{SizeX: -1, SizeY: 1, SizeZ: 1, Spacing: 1}, false},
		{"zero spacing", Spec{SizeX: 1, SizeY: 1, SizeZ: 1}, false},
		{"negative spacing", Spec{SizeX: 1, SizeY: 1, SizeZ: 1, Spacing: -2}, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestSpecCellCount(t *testing.T) {
	s := Spec{SizeX: 3, SizeY: 4, SizeZ: 5, Spacing: 1}
	if got := s.CellCount(); got != 60 {
		t.Fatalf("cell count: got %d, want 60", got)
	}
	if got := (Spec{Spacing: 1}).CellCount(); got != 0 {
		t.Fatalf("empty lattice cell count: got %d, want 0", got)
	}
}

func TestCellPositionCentred(t *testing.T) {
	// A (2,1,2) lattice with spacing 1 centred on the origin places its
	// cells at the four corners of a unit square.
	s := Spec{SizeX: 2, SizeY: 1, SizeZ: 2, Spacing: 1, AlignToCenter: true}
	want := map[[3]int]mgl64.Vec3{
		{0, 0, 0}: {-0.5, 0, -0.5},
		{0, 0, 1}: {-0.5, 0, 0.5},
		{1, 0, 0}: {0.5, 0, -0.5},
		{1, 0, 1}: {0.5, 0, 0.5},
	}
	for cell, pos := range want {
		if got := s.CellPosition(cell[0], cell[1], cell[2]); got != pos {
			t.Fatalf("cell %v: got %v, want %v", cell, got, pos)
		}
	}
}

func TestCellPositionUncentred(t *testing.T) {
	s := Spec{SizeX: 3, SizeY: 2, SizeZ: 3, Spacing: 2.5}
	if got := s.CellPosition(0, 0, 0); got != (mgl64.Vec3{}) {
		t.Fatalf("origin cell: got %v, want zero", got)
	}
	if got, want := s.CellPosition(2, 1, 1), (mgl64.Vec3{5, 2.5, 2.5}); got != want {
		t.Fatalf("cell (2,1,1): got %v, want %v", got, want)
	}
}
