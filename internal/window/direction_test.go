package window

import (
	"errors"
	"testing"
)

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in   string
		want Direction
	}{
		{"n", North},
		{"s", South},
		{"e", East},
		{"w", West},
		{"ne", NorthEast},
		{"NW", NorthWest},
		{" se ", SouthEast},
		{"sw", SouthWest},
	}

	for _, tt := range tests {
		got, err := ParseDirection(tt.in)
		if err != nil {
			t.Fatalf("ParseDirection(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDirection(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	for _, bad := range []string{"", "x", "nn", "en", "nsew"} {
		if _, err := ParseDirection(bad); !errors.Is(err, ErrInvalidDirection) {
			t.Errorf("ParseDirection(%q) err = %v, want ErrInvalidDirection", bad, err)
		}
	}
}

func TestDirectionString_RoundTrips(t *testing.T) {
	for _, d := range Directions() {
		parsed, err := ParseDirection(d.String())
		if err != nil {
			t.Fatalf("%v: %v", d, err)
		}
		if parsed != d {
			t.Fatalf("round trip %v -> %q -> %v", d, d.String(), parsed)
		}
	}

	if (North | South).Valid() {
		t.Fatalf("n+s must not be a valid direction")
	}
	if got := (East | West).String(); got != "invalid" {
		t.Fatalf("String of e+w = %q", got)
	}
}

func TestDirectionComponents(t *testing.T) {
	if !SouthEast.Has(South) || !SouthEast.Has(East) {
		t.Fatalf("se must contain s and e")
	}
	if SouthEast.Has(North) || SouthEast.Has(West) {
		t.Fatalf("se must not contain n or w")
	}
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	if err != nil || id != 42 {
		t.Fatalf("ParseID = %v, %v", id, err)
	}
	if id.String() != "42" {
		t.Fatalf("String = %q", id.String())
	}
	if _, err := ParseID("w-1"); err == nil {
		t.Fatalf("expected error")
	}
}
