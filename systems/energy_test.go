package systems

import (
	"math"
	"testing"

	"github.com/pthm-cable/pasture/components"
)

const tol = 1e-9

func living(kind components.Creature, stamina int, calories float64, health int) components.Cell {
	return components.Cell{
		ID:       100,
		Kind:     kind,
		Stamina:  stamina,
		Status:   components.Alive,
		Calories: calories,
		Health:   health,
	}
}

func holding(c components.Cell, kind components.Creature, calories float64) components.Cell {
	c.Contained = &components.Contained{ID: 200, Kind: kind, Status: components.Alive, Calories: calories, Health: 100}
	return c
}

// ---------- Digest ----------

func TestDigest(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name        string
		cell        components.Cell
		wantGain    float64
		wantCleared bool
		wantPrey    float64 // remaining prey calories when not cleared
	}{
		{"sheep on grass", holding(living(components.Sheep, 5, 10, 100), components.Grass, 2.0), 0.5, false, 1.5},
		{"wolf on sheep", holding(living(components.Wolf, 5, 10, 100), components.Sheep, 5.0), 2.0, false, 3.0},
		{"wolf finishes sheep", holding(living(components.Wolf, 5, 10, 100), components.Sheep, 1.0), 1.0, true, 0},
		{"exact rate clears", holding(living(components.Sheep, 5, 10, 100), components.Grass, 0.5), 0.5, true, 0},
		{"wolf ignores grass", holding(living(components.Wolf, 5, 10, 100), components.Grass, 4.0), 0, false, 4.0},
		{"sheep ignores wolf", holding(living(components.Sheep, 5, 10, 100), components.Wolf, 4.0), 0, false, 4.0},
		{"grass never digests", holding(living(components.Grass, 5, 10, 100), components.Grass, 4.0), 0, false, 4.0},
		{"nothing contained", living(components.Wolf, 5, 10, 100), 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cell
			before := c.Calories
			original := c.Contained

			gain, cleared := Digest(&c, &p)

			if math.Abs(gain-tt.wantGain) > tol {
				t.Errorf("gain = %v, want %v", gain, tt.wantGain)
			}
			if math.Abs(c.Calories-before-gain) > tol {
				t.Errorf("host gained %v, transfer was %v", c.Calories-before, gain)
			}
			if cleared != tt.wantCleared {
				t.Errorf("cleared = %v, want %v", cleared, tt.wantCleared)
			}
			if tt.wantCleared {
				if c.Contained != nil {
					t.Error("digested prey should be dropped")
				}
				return
			}
			if original == nil {
				return
			}
			if math.Abs(c.Contained.Calories-tt.wantPrey) > tol {
				t.Errorf("prey calories = %v, want %v", c.Contained.Calories, tt.wantPrey)
			}
			if gain > 0 && original.Calories != tt.wantPrey+gain {
				t.Errorf("original record modified: %v", original.Calories)
			}
		})
	}
}

// ---------- Stamina ----------

func TestReplenishStamina(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name        string
		stamina     int
		calories    float64
		wantStamina int
		wantCal     float64
	}{
		{"refills at 1", 1, 5, 2, 4},
		{"refills at 0", 0, 3, 1, 2},
		{"enough stamina", 2, 5, 2, 5},
		{"too hungry", 1, 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := living(components.Sheep, tt.stamina, tt.calories, 100)
			ReplenishStamina(&c, &p)
			if c.Stamina != tt.wantStamina || math.Abs(c.Calories-tt.wantCal) > tol {
				t.Errorf("got stamina %d calories %v, want %d %v", c.Stamina, c.Calories, tt.wantStamina, tt.wantCal)
			}
		})
	}
}

// ---------- Heal ----------

func TestHeal_LargeSequenceStopsAtReserve(t *testing.T) {
	p := DefaultParams()
	c := living(components.Sheep, 5, 10, 50)

	steps := []struct {
		health   int
		calories float64
	}{
		{55, 10 - 5/1.5},
		{60, 10 - 10/1.5},
		{60, 10 - 10/1.5}, // 3.33 calories left does not cover cost+reserve
	}
	for i, want := range steps {
		Heal(&c, &p)
		if c.Health != want.health || math.Abs(c.Calories-want.calories) > tol {
			t.Fatalf("step %d: health %d calories %v, want %d %v", i+1, c.Health, c.Calories, want.health, want.calories)
		}
	}
}

func TestHeal(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name       string
		health     int
		calories   float64
		wantHealth int
		wantCost   float64
	}{
		{"small heal", 95, 10, 96, 1 / 1.5},
		{"deficit exactly large threshold", 90, 10, 95, 5 / 1.5},
		{"small heal caps at max", 99, 10, 100, 1 / 1.5},
		{"already full", 100, 10, 100, 0},
		{"calories at minimum", 50, 2, 50, 0},
		{"cannot afford reserve", 50, 4.3, 50, 0},
		{"small heal affordable", 95, 2.1, 96, 1 / 1.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := living(components.Wolf, 5, tt.calories, tt.health)
			healed, cost := Heal(&c, &p)
			if c.Health != tt.wantHealth {
				t.Errorf("health = %d, want %d", c.Health, tt.wantHealth)
			}
			if healed != tt.wantHealth-tt.health {
				t.Errorf("reported %d healed, want %d", healed, tt.wantHealth-tt.health)
			}
			if math.Abs(cost-tt.wantCost) > tol || math.Abs(tt.calories-c.Calories-cost) > tol {
				t.Errorf("cost %v (calories %v -> %v), want %v", cost, tt.calories, c.Calories, tt.wantCost)
			}
		})
	}
}

// ---------- Starve / Kill ----------

func TestStarve_Saturates(t *testing.T) {
	p := DefaultParams()

	c := living(components.Sheep, 0, 0, 5)
	if !Starve(&c, &p) {
		t.Fatal("expected starvation")
	}
	if c.Health != 0 || c.Calories != 0 {
		t.Errorf("got health %d calories %v, want 0 0", c.Health, c.Calories)
	}

	fed := living(components.Sheep, 0, 0.1, 50)
	if Starve(&fed, &p) || fed.Health != 50 {
		t.Error("a cell with calories must not starve")
	}
}

func TestKill(t *testing.T) {
	p := DefaultParams()
	pos := components.Position{Row: 2, Col: 3}

	tests := []struct {
		name    string
		cell    components.Cell
		wantID  uint64
		wantCal float64
	}{
		{"sheep without prey", living(components.Sheep, 4, 3, 0), 100, 18},
		{"wolf without prey", living(components.Wolf, 4, 0, 0), 100, 10},
		{"wolf holding sheep", holding(living(components.Wolf, 4, 7, 0), components.Sheep, 2), 200, 12},
		{"sheep holding grass", holding(living(components.Sheep, 4, 7, 0), components.Grass, 1.5), 200, 16.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cell
			c.Pos = pos
			c.Dir = components.East
			Kill(&c, &p)

			if c.Kind != components.Grass || c.Status != components.Dead {
				t.Errorf("got %v/%v, want dead grass", c.Kind, c.Status)
			}
			if c.ID != tt.wantID {
				t.Errorf("id = %d, want %d", c.ID, tt.wantID)
			}
			if math.Abs(c.Calories-tt.wantCal) > tol {
				t.Errorf("calories = %v, want %v", c.Calories, tt.wantCal)
			}
			if c.Pos != pos || c.Stamina != 0 || c.Health != 0 || c.Dir != components.Stand || c.Contained != nil {
				t.Errorf("deposit not reset: %+v", c)
			}
		})
	}
}

// ---------- Metabolize ----------

func TestMetabolize_DeadCellsUntouched(t *testing.T) {
	p := DefaultParams()
	c := components.Cell{ID: 3, Kind: components.Grass, Calories: 0, Health: 0}
	before := c

	if r := Metabolize(&c, &p); r != (MetabolismResult{}) {
		t.Errorf("expected empty result, got %+v", r)
	}
	if c != before {
		t.Errorf("dead cell changed: %+v", c)
	}
}

func TestMetabolize_KillDepositsNonPrey(t *testing.T) {
	p := DefaultParams()
	c := holding(living(components.Wolf, 3, 0, 10), components.Grass, 4)

	r := Metabolize(&c, &p)

	if !r.Starved || !r.Died {
		t.Errorf("expected starvation and death, got %+v", r)
	}
	if c.Kind != components.Grass || c.ID != 200 || math.Abs(c.Calories-14) > tol {
		t.Errorf("got %v id %d calories %v, want grass id 200 with 14", c.Kind, c.ID, c.Calories)
	}
}

func TestMetabolize_StepOrder(t *testing.T) {
	p := DefaultParams()

	// Digest 0.5 first, then the refill sees 1.5 calories and pays 1.
	c := holding(living(components.Sheep, 1, 1.0, 100), components.Grass, 2.0)
	r := Metabolize(&c, &p)

	if math.Abs(r.Digested-0.5) > tol || !r.Refilled {
		t.Fatalf("expected digestion then refill, got %+v", r)
	}
	if c.Stamina != 2 || math.Abs(c.Calories-0.5) > tol {
		t.Errorf("got stamina %d calories %v, want 2 0.5", c.Stamina, c.Calories)
	}
	if r.Healed != 0 || r.Starved || r.Died {
		t.Errorf("unexpected heal/starve/death: %+v", r)
	}
}

func TestMetabolize_HealthStaysInRange(t *testing.T) {
	p := DefaultParams()

	for health := 0; health <= p.MaxHealth; health += 7 {
		for _, cal := range []float64{0, 0.5, 2, 3, 50} {
			c := living(components.Sheep, 2, cal, max(health, 1))
			Metabolize(&c, &p)
			if c.Health < 0 || c.Health > p.MaxHealth {
				t.Errorf("health %d calories %v: result health %d", health, cal, c.Health)
			}
			if c.Calories < 0 {
				t.Errorf("health %d calories %v: negative calories %v", health, cal, c.Calories)
			}
			if c.IsAlive() && c.Health == 0 {
				t.Errorf("health %d calories %v: alive at zero health", health, cal)
			}
		}
	}
}
