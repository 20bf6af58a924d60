package domain

import "fmt"

type IntentKind string

const (
	IntentPowerOn           IntentKind = "power_on"
	IntentPowerOff          IntentKind = "power_off"
	IntentToggle            IntentKind = "toggle"
	IntentSetColorRGB       IntentKind = "set_color_rgb"
	IntentSetBrightnessPct  IntentKind = "set_brightness_pct"
	IntentSetAttribute      IntentKind = "set_attribute"
	IntentActivateScene     IntentKind = "activate_scene"
	IntentTriggerAutomation IntentKind = "trigger_automation"
	IntentQueryState        IntentKind = "query_state"
)

// Intent is the classified meaning of an action token. Only the fields
// belonging to Kind are meaningful.
type Intent struct {
	Kind IntentKind

	RGB        [3]int // IntentSetColorRGB
	Brightness int    // IntentSetBrightnessPct

	// IntentSetAttribute. Value is an int, float64 or string.
	Attribute string
	Value     any
}

func PowerOn() Intent           { return Intent{Kind: IntentPowerOn} }
func PowerOff() Intent          { return Intent{Kind: IntentPowerOff} }
func Toggle() Intent            { return Intent{Kind: IntentToggle} }
func ActivateScene() Intent     { return Intent{Kind: IntentActivateScene} }
func TriggerAutomation() Intent { return Intent{Kind: IntentTriggerAutomation} }
func QueryState() Intent        { return Intent{Kind: IntentQueryState} }

func SetColorRGB(r, g, b int) Intent {
	return Intent{Kind: IntentSetColorRGB, RGB: [3]int{r, g, b}}
}

func SetBrightnessPct(pct int) Intent {
	return Intent{Kind: IntentSetBrightnessPct, Brightness: pct}
}

func SetAttribute(name string, value any) Intent {
	return Intent{Kind: IntentSetAttribute, Attribute: name, Value: value}
}

// Describe renders the intent as the past-tense phrase used in outcome messages.
func (i Intent) Describe(target string) string {
	switch i.Kind {
	case IntentPowerOn:
		return "Turned on " + target
	case IntentPowerOff:
		return "Turned off " + target
	case IntentToggle:
		return "Toggled " + target
	case IntentSetColorRGB:
		return fmt.Sprintf("Set %s color to rgb(%d,%d,%d)", target, i.RGB[0], i.RGB[1], i.RGB[2])
	case IntentSetBrightnessPct:
		return fmt.Sprintf("Set %s brightness to %d%%", target, i.Brightness)
	case IntentSetAttribute:
		return fmt.Sprintf("Set %s %s to %v", target, i.Attribute, i.Value)
	case IntentActivateScene:
		return "Activated scene " + target
	case IntentTriggerAutomation:
		return "Triggered automation " + target
	case IntentQueryState:
		return "Queried " + target
	default:
		return fmt.Sprintf("Ran %s on %s", i.Kind, target)
	}
}

// ServiceCall is a Home Assistant service invocation. Payload always carries entity_id.
type ServiceCall struct {
	Domain  string         `json:"domain"`
	Service string         `json:"service"`
	Payload map[string]any `json:"payload"`
}

func (c ServiceCall) String() string {
	return c.Domain + "." + c.Service
}
