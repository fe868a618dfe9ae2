package systems

import (
	"github.com/pthm-cable/pasture/components"
)

// MetabolismResult describes what one cell's energy step did.
type MetabolismResult struct {
	Digested float64 // calories moved from contained prey to host
	Cleared  bool    // prey fully digested and dropped
	Refilled bool    // one stamina point bought with calories
	Healed   int
	HealCost float64
	Starved  bool
	Died     bool
}

// Digest moves up to the host kind's digestion rate from contained prey into
// the host. Only the host's designated prey is digested. Prey at zero
// calories is cleared. Returns the amount transferred.
//
// Contained records may be shared with the previous generation buffer, so the
// record is replaced rather than modified.
func Digest(c *components.Cell, p *Params) (float64, bool) {
	if !c.HasPrey() {
		return 0, false
	}

	prey := *c.Contained
	transfer := min(prey.Calories, p.digestionRate(c.Kind))
	if transfer < 0 {
		transfer = 0
	}
	prey.Calories -= transfer
	c.Calories += transfer

	if prey.Calories <= 0 {
		c.Contained = nil
		return transfer, true
	}
	c.Contained = &prey
	return transfer, false
}

// ReplenishStamina buys one stamina point when stamina is at most 1 and the
// cell has more calories than the price.
func ReplenishStamina(c *components.Cell, p *Params) bool {
	if c.Stamina > 1 || c.Calories <= p.StaminaRefill {
		return false
	}
	c.Stamina++
	c.Calories -= p.StaminaRefill
	return true
}

// Heal restores health when the cell is hurt and well fed. A deficit of at
// least LargeHealDeficit heals LargeHeal, otherwise SmallHeal. The heal costs
// size/HealCostDivisor calories and is skipped unless the cell keeps more
// than healReserve afterwards.
func Heal(c *components.Cell, p *Params) (int, float64) {
	if c.Health >= p.MaxHealth || c.Calories <= p.HealMinCalories {
		return 0, 0
	}

	size := p.SmallHeal
	if p.MaxHealth-c.Health >= p.LargeHealDeficit {
		size = p.LargeHeal
	}
	cost := float64(size) / p.HealCostDivisor
	if c.Calories <= cost+healReserve {
		return 0, 0
	}

	before := c.Health
	c.Health = min(c.Health+size, p.MaxHealth)
	c.Calories -= cost
	return c.Health - before, cost
}

// Starve damages a cell with no calories left. Calories and health saturate at 0.
func Starve(c *components.Cell, p *Params) bool {
	if c.Calories > 0 {
		return false
	}
	c.Calories = 0
	c.Health = max(c.Health-p.StarvationDamage, 0)
	return true
}

// Kill turns the cell into a dead grass deposit at the same position.
// If the cell holds a contained organism, the deposit takes that organism's
// identifier and calories, otherwise the host's. Either way the dying host's
// rot yield is added.
func Kill(c *components.Cell, p *Params) {
	id, calories := c.ID, c.Calories
	if c.Contained != nil {
		id, calories = c.Contained.ID, c.Contained.Calories
	}
	*c = components.Cell{
		ID:       id,
		Kind:     components.Grass,
		Pos:      c.Pos,
		Status:   components.Dead,
		Calories: max(calories, 0) + p.rotYield(c.Kind),
		Dir:      components.Stand,
	}
}

// Metabolize runs one energy step on c: digest, stamina, heal, starve, and
// kill once health reaches 0. Cells that are not alive are left alone.
func Metabolize(c *components.Cell, p *Params) MetabolismResult {
	var r MetabolismResult
	if !c.IsAlive() {
		return r
	}

	r.Digested, r.Cleared = Digest(c, p)
	r.Refilled = ReplenishStamina(c, p)
	r.Healed, r.HealCost = Heal(c, p)
	r.Starved = Starve(c, p)

	if c.Health <= 0 {
		Kill(c, p)
		r.Died = true
	}
	return r
}

// energyPhase copies src into dst and metabolizes every living cell of dst.
func energyPhase(src, dst []components.Cell, p *Params, report *TickReport) {
	copy(dst, src)
	for i := range dst {
		if !dst[i].IsAlive() {
			continue
		}
		report.addMetabolism(Metabolize(&dst[i], p))
	}
}
