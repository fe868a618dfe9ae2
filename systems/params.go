package systems

import (
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
)

// healReserve is the calorie margin that must remain after paying for a heal.
const healReserve = 1.0

// Params holds the metabolic constants used by the tick phases.
// Per-kind arrays are indexed by components.Creature.
type Params struct {
	DigestionRate [components.NumCreatures]float64
	RotYield      [components.NumCreatures]float64

	MaxHealth        int
	LargeHealDeficit int
	LargeHeal        int
	SmallHeal        int
	HealCostDivisor  float64
	HealMinCalories  float64
	StarvationDamage int
	StaminaRefill    float64

	GrassCalories float64 // calories of seeded dormant grass

	ValidateInvariants bool
}

// DefaultParams returns the standard rules: wolves digest 2.0/tick, sheep 0.5/tick,
// sheep rot into 15 calories and wolves into 10.
func DefaultParams() Params {
	var p Params
	p.DigestionRate[components.Sheep] = 0.5
	p.DigestionRate[components.Wolf] = 2.0
	p.RotYield[components.Sheep] = 15
	p.RotYield[components.Wolf] = 10
	p.MaxHealth = 100
	p.LargeHealDeficit = 10
	p.LargeHeal = 5
	p.SmallHeal = 1
	p.HealCostDivisor = 1.5
	p.HealMinCalories = 2
	p.StarvationDamage = 10
	p.StaminaRefill = 1
	p.GrassCalories = 2
	return p
}

// ParamsFromConfig builds Params from the metabolism, world and simulation sections.
func ParamsFromConfig(cfg *config.Config) Params {
	m := &cfg.Metabolism
	var p Params
	p.DigestionRate[components.Grass] = m.DigestionRate.Grass
	p.DigestionRate[components.Sheep] = m.DigestionRate.Sheep
	p.DigestionRate[components.Wolf] = m.DigestionRate.Wolf
	p.RotYield[components.Grass] = m.RotYield.Grass
	p.RotYield[components.Sheep] = m.RotYield.Sheep
	p.RotYield[components.Wolf] = m.RotYield.Wolf
	p.MaxHealth = m.MaxHealth
	p.LargeHealDeficit = m.LargeHealDeficit
	p.LargeHeal = m.LargeHeal
	p.SmallHeal = m.SmallHeal
	p.HealCostDivisor = m.HealCostDivisor
	p.HealMinCalories = m.HealMinCalories
	p.StarvationDamage = m.StarvationDamage
	p.StaminaRefill = m.StaminaRefill
	p.GrassCalories = cfg.World.GrassCalories
	p.ValidateInvariants = cfg.Simulation.ValidateInvariants
	return p
}

func (p *Params) digestionRate(k components.Creature) float64 {
	if !k.Valid() {
		return 0
	}
	return p.DigestionRate[k]
}

func (p *Params) rotYield(k components.Creature) float64 {
	if !k.Valid() {
		return 0
	}
	return p.RotYield[k]
}
