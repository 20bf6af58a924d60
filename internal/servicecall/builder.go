// Package servicecall turns a resolved entity and its classified intent into the
// Home Assistant service call that carries it out.
package servicecall

import (
	"strings"

	"hactl/internal/domain"
)

// Service names.
const (
	ServiceTurnOn  = "turn_on"
	ServiceTurnOff = "turn_off"
	ServiceToggle  = "toggle"
	ServiceTrigger = "trigger"

	setPrefix = "set_"
)

// Payload keys.
const (
	KeyEntityID      = "entity_id"
	KeyRGBColor      = "rgb_color"
	KeyBrightnessPct = "brightness_pct"
)

var switchable = set(
	"light", "switch", "fan", "input_boolean", "automation", "script", "media_player",
	"climate", "humidifier", "siren", "remote", "group", "vacuum",
)

var readOnly = set(
	"sensor", "binary_sensor", "weather", "sun", "person", "zone", "device_tracker",
	domain.DomainScene, domain.DomainAutomation,
)

func set(items ...string) map[string]struct{} {
	m := make(map[string]struct{}, len(items))
	for _, it := range items {
		m[it] = struct{}{}
	}
	return m
}

// Build returns the service call for intent on entity. QueryState needs no call and
// yields (nil, nil). An intent the entity's domain cannot accept yields a
// *domain.DomainMismatchError; no fallback domain is ever substituted.
func Build(entity domain.Entity, intent domain.Intent) (*domain.ServiceCall, error) {
	d := entity.Domain()
	mismatch := &domain.DomainMismatchError{EntityID: entity.ID, Domain: d, Intent: intent.Kind}

	call := func(service string, extra map[string]any) *domain.ServiceCall {
		payload := map[string]any{KeyEntityID: entity.ID}
		for k, v := range extra {
			payload[k] = v
		}
		return &domain.ServiceCall{Domain: d, Service: service, Payload: payload}
	}

	switch intent.Kind {
	case domain.IntentQueryState:
		return nil, nil

	case domain.IntentPowerOn, domain.IntentPowerOff, domain.IntentToggle:
		if _, ok := switchable[d]; !ok {
			return nil, mismatch
		}
		service := map[domain.IntentKind]string{
			domain.IntentPowerOn:  ServiceTurnOn,
			domain.IntentPowerOff: ServiceTurnOff,
			domain.IntentToggle:   ServiceToggle,
		}[intent.Kind]
		return call(service, nil), nil

	case domain.IntentSetColorRGB:
		if d != domain.DomainLight {
			return nil, mismatch
		}
		return call(ServiceTurnOn, map[string]any{KeyRGBColor: []int{intent.RGB[0], intent.RGB[1], intent.RGB[2]}}), nil

	case domain.IntentSetBrightnessPct:
		if d != domain.DomainLight {
			return nil, mismatch
		}
		return call(ServiceTurnOn, map[string]any{KeyBrightnessPct: intent.Brightness}), nil

	case domain.IntentSetAttribute:
		if _, ro := readOnly[d]; ro || d == "" || intent.Attribute == "" {
			return nil, mismatch
		}
		return call(setPrefix+intent.Attribute, map[string]any{intent.Attribute: intent.Value}), nil

	case domain.IntentActivateScene:
		if d != domain.DomainScene {
			return nil, mismatch
		}
		return call(ServiceTurnOn, nil), nil

	case domain.IntentTriggerAutomation:
		if d != domain.DomainAutomation {
			return nil, mismatch
		}
		return call(ServiceTrigger, nil), nil

	default:
		return nil, mismatch
	}
}

// KindOf derives the intent family a call was built from.
func KindOf(call domain.ServiceCall) domain.IntentKind {
	switch {
	case call.Service == ServiceTrigger:
		return domain.IntentTriggerAutomation
	case call.Service == ServiceTurnOff:
		return domain.IntentPowerOff
	case call.Service == ServiceToggle:
		return domain.IntentToggle
	case call.Service == ServiceTurnOn && call.Domain == domain.DomainScene:
		return domain.IntentActivateScene
	case call.Service == ServiceTurnOn && has(call.Payload, KeyRGBColor):
		return domain.IntentSetColorRGB
	case call.Service == ServiceTurnOn && has(call.Payload, KeyBrightnessPct):
		return domain.IntentSetBrightnessPct
	case call.Service == ServiceTurnOn:
		return domain.IntentPowerOn
	case strings.HasPrefix(call.Service, setPrefix):
		return domain.IntentSetAttribute
	default:
		return ""
	}
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}
