package components

import "testing"

// ---------- Creatures ----------

func TestParseCreature(t *testing.T) {
	tests := []struct {
		in      string
		want    Creature
		wantErr bool
	}{
		{"empty", Empty, false},
		{"grass", Grass, false},
		{"sheep", Sheep, false},
		{"wolf", Wolf, false},
		{"  Sheep ", Sheep, false},
		{"WOLF", Wolf, false},
		{"goat", Empty, true},
		{"", Empty, true},
		{"wolves", Empty, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCreature(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseCreature(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseCreature(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestCreature_StringRoundTrip(t *testing.T) {
	for c := Creature(0); c < NumCreatures; c++ {
		got, err := ParseCreature(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCreature(%q) = %v, %v; want %v", c.String(), got, err, c)
		}
	}
	if s := Creature(NumCreatures).String(); s != "unknown" {
		t.Errorf("out-of-range kind = %q, want unknown", s)
	}
}

func TestCreature_Glyph(t *testing.T) {
	tests := []struct {
		c    Creature
		want rune
	}{
		{Empty, '.'},
		{Grass, '#'},
		{Sheep, 'S'},
		{Wolf, 'W'},
		{Creature(7), '?'},
	}
	seen := make(map[rune]bool)
	for _, tt := range tests {
		got := tt.c.Glyph()
		if got != tt.want {
			t.Errorf("%v glyph = %q, want %q", tt.c, got, tt.want)
		}
		if seen[got] {
			t.Errorf("glyph %q used twice", got)
		}
		seen[got] = true
	}
}

// ---------- Directions ----------

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    Direction
		wantErr bool
	}{
		{"stand", Stand, false},
		{"n", North, false},
		{"NE", NorthEast, false},
		{" e ", East, false},
		{"sw", SouthWest, false},
		{"nw", NorthWest, false},
		{"north", Stand, true},
		{"up", Stand, true},
		{"", Stand, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDirection(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDirection(%q) = %v, want error", tt.in, got)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestDirection_StringRoundTrip(t *testing.T) {
	for d := Direction(0); d < NumDirections; d++ {
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v; want %v", d.String(), got, err, d)
		}
	}
	if s := Direction(NumDirections).String(); s != "unknown" {
		t.Errorf("out-of-range direction = %q, want unknown", s)
	}
}
