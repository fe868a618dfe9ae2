package systems

import (
	"log/slog"
)

// TickReport summarizes one committed tick.
type TickReport struct {
	Tick int64 `csv:"tick"`

	Digested float64 `csv:"digested"`
	Cleared  int     `csv:"prey_cleared"`
	Refills  int     `csv:"stamina_refills"`
	Heals    int     `csv:"heals"`
	HealedHP int     `csv:"healed_hp"`
	HealCost float64 `csv:"heal_cost"`
	Starved  int     `csv:"starved"`
	Deaths   int     `csv:"deaths"`
	Moves    int     `csv:"moves"`
	Captures int     `csv:"captures"`
	Releases int     `csv:"releases"`
	Blocked  int     `csv:"blocked"`
	Stands   int     `csv:"stands"`
}

func (r *TickReport) addMetabolism(m MetabolismResult) {
	r.Digested += m.Digested
	if m.Cleared {
		r.Cleared++
	}
	if m.Refilled {
		r.Refills++
	}
	if m.Healed > 0 {
		r.Heals++
		r.HealedHP += m.Healed
		r.HealCost += m.HealCost
	}
	if m.Starved {
		r.Starved++
	}
	if m.Died {
		r.Deaths++
	}
}

func (r *TickReport) addMovement(m MovementResult) {
	r.Moves += m.Moves
	r.Captures += m.Captures
	r.Releases += m.Releases
	r.Blocked += m.Blocked
	r.Stands += m.Stands
}

// LogValue implements slog.LogValuer.
func (r TickReport) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("tick", r.Tick),
		slog.Float64("digested", r.Digested),
		slog.Int("heals", r.Heals),
		slog.Int("starved", r.Starved),
		slog.Int("deaths", r.Deaths),
		slog.Int("moves", r.Moves),
		slog.Int("captures", r.Captures),
		slog.Int("blocked", r.Blocked),
	)
}

// TickHooks receives phase boundaries, used for timing. Either field may be nil.
type TickHooks struct {
	PhaseStart func(phase string)
	PhaseEnd   func(phase string)
}

// Phase names passed to TickHooks.
const (
	PhaseEnergy   = "energy"
	PhaseMovement = "movement"
)

// Tick advances the grid by one step: energy phase, then movement phase,
// each reading a stable buffer and writing a fresh one. The result is
// committed with a single buffer swap, so on error the grid is unchanged.
func (g *Grid) Tick() (TickReport, error) {
	return g.TickWithHooks(TickHooks{})
}

// TickWithHooks is Tick with phase callbacks.
func (g *Grid) TickWithHooks(h TickHooks) (TickReport, error) {
	report := TickReport{Tick: g.tick + 1}

	live := g.live
	energyBuf := (live + 1) % numBuffers
	moveBuf := (live + 2) % numBuffers

	h.start(PhaseEnergy)
	energyPhase(g.arena[live], g.arena[energyBuf], &g.params, &report)
	h.end(PhaseEnergy)

	h.start(PhaseMovement)
	report.addMovement(movementPhase(g, g.arena[energyBuf], g.arena[moveBuf], g.claimed, g.policy))
	h.end(PhaseMovement)

	if g.params.ValidateInvariants {
		if err := g.validate(g.arena[moveBuf]); err != nil {
			return TickReport{}, err
		}
	}

	g.live = moveBuf
	g.tick++
	return report, nil
}

func (h TickHooks) start(phase string) {
	if h.PhaseStart != nil {
		h.PhaseStart(phase)
	}
}

func (h TickHooks) end(phase string) {
	if h.PhaseEnd != nil {
		h.PhaseEnd(phase)
	}
}
