package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseCoord(t *testing.T) {
	tests := []struct {
		name    string
		row     string
		column  int
		want    Coord
		wantErr bool
	}{
		{name: "origin", row: "A", column: 1, want: Coord{Row: 0, Col: 0}},
		{name: "lower case", row: "c", column: 7, want: Coord{Row: 2, Col: 6}},
		{name: "padded", row: " j ", column: 10, want: Coord{Row: 9, Col: 9}},
		{name: "last row", row: "Z", column: 26, want: Coord{Row: 25, Col: 25}},
		{name: "zero column", row: "A", column: 0, wantErr: true},
		{name: "digit row", row: "1", column: 1, wantErr: true},
		{name: "two letters", row: "AB", column: 1, wantErr: true},
		{name: "empty row", row: "", column: 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCoord(tt.row, tt.column)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidCoordinate) {
					t.Fatalf("ParseCoord() error = %v, want ErrInvalidCoordinate", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCoord() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("ParseCoord() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseLabelRoundTrip(t *testing.T) {
	for _, label := range []string{"A1", "B7", "J10", "Z26"} {
		c, err := ParseLabel(label)
		if err != nil {
			t.Fatalf("ParseLabel(%q) error: %v", label, err)
		}
		if c.String() != label {
			t.Fatalf("String() = %q, want %q", c.String(), label)
		}
	}
	for _, bad := range []string{"", "A", "7B", "Ax", "B+7", "B-1", "B 7", "B7x"} {
		if _, err := ParseLabel(bad); err == nil {
			t.Fatalf("ParseLabel(%q) expected error", bad)
		}
	}
}

func TestCellJSON(t *testing.T) {
	cells := []Cell{EmptyCell(), ShipCell(3)}
	data, err := json.Marshal(cells)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[0,3]" {
		t.Fatalf("cells JSON = %s, want [0,3]", data)
	}

	var back []Cell
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back[0].IsEmpty() {
		t.Fatalf("cell 0 should be empty")
	}
	if id, ok := back[1].Ship(); !ok || id != 3 {
		t.Fatalf("cell 1 = (%d, %t), want ship 3", id, ok)
	}
	if err := json.Unmarshal([]byte("[-1]"), &back); err == nil {
		t.Fatalf("expected error for negative ship id")
	}
}
