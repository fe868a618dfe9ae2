package systems

// PhaseInfo describes a tick phase for UI display.
type PhaseInfo struct {
	ID          string // Identifier passed to TickHooks and used for perf tracking
	Name        string // Display name
	Description string // What this phase does
}

// PhaseRegistry holds metadata about the timed phases of a step.
// This centralizes phase naming so the viewer, logs, and perf tracker stay in sync.
type PhaseRegistry struct {
	phases []PhaseInfo
	byID   map[string]PhaseInfo
}

// NewPhaseRegistry creates a registry with the grid's own tick phases.
func NewPhaseRegistry() *PhaseRegistry {
	reg := &PhaseRegistry{
		byID: make(map[string]PhaseInfo),
	}
	reg.Register(PhaseInfo{ID: PhaseEnergy, Name: "Energy", Description: "Digestion, stamina, healing, starvation, decay"})
	reg.Register(PhaseInfo{ID: PhaseMovement, Name: "Movement", Description: "Proposals, claims, captures, releases"})
	return reg
}

// Register adds a phase to the registry. Re-registering an ID replaces its info
// but keeps its position.
func (r *PhaseRegistry) Register(info PhaseInfo) {
	if _, ok := r.byID[info.ID]; ok {
		for i := range r.phases {
			if r.phases[i].ID == info.ID {
				r.phases[i] = info
			}
		}
	} else {
		r.phases = append(r.phases, info)
	}
	r.byID[info.ID] = info
}

// Get returns phase info by ID.
func (r *PhaseRegistry) Get(id string) (PhaseInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a phase ID.
// Falls back to the ID itself if not found.
func (r *PhaseRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered phases in registration order.
func (r *PhaseRegistry) All() []PhaseInfo {
	return r.phases
}

// IDs returns all phase IDs in registration order.
func (r *PhaseRegistry) IDs() []string {
	ids := make([]string, len(r.phases))
	for i, info := range r.phases {
		ids[i] = info.ID
	}
	return ids
}
