package domain

import "strings"

// Entity domains with dedicated handling.
const (
	DomainLight      = "light"
	DomainSwitch     = "switch"
	DomainScene      = "scene"
	DomainAutomation = "automation"
	DomainScript     = "script"
)

// Entity is one controllable or observable object reported by Home Assistant.
type Entity struct {
	ID         string         `json:"entity_id"`
	Name       string         `json:"name"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// Domain returns the prefix of the entity identifier ("light" for "light.kitchen").
func (e Entity) Domain() string {
	return DomainOf(e.ID)
}

// DomainOf extracts the domain from an entity identifier. Identifiers without a dot have no domain.
func DomainOf(entityID string) string {
	d, _, ok := strings.Cut(entityID, ".")
	if !ok {
		return ""
	}
	return d
}

// StateSnapshot is the read-only view returned by state queries.
type StateSnapshot struct {
	EntityID   string         `json:"entity_id"`
	Name       string         `json:"name"`
	State      string         `json:"state"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Similarity float64        `json:"similarity"`
}

func (e Entity) Snapshot(similarity float64) StateSnapshot {
	return StateSnapshot{
		EntityID:   e.ID,
		Name:       e.Name,
		State:      e.State,
		Attributes: e.Attributes,
		Similarity: similarity,
	}
}
