// Package intent classifies the trailing action token of a command into a typed
// domain.Intent.
package intent

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"hactl/internal/domain"
)

var (
	rgbPattern       = regexp.MustCompile(`^rgb\((.*)\)$`)
	attributePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
)

type Config struct {
	// ActionFirst classifies the token before applying the scene/automation
	// collapse, so an explicit "off" on an automation turns it off instead of
	// triggering it.
	ActionFirst bool `yaml:"action_first"`
	// AttributeAllowList restricts "set <name> <value>". Empty forwards any name.
	AttributeAllowList []string `yaml:"attribute_allow_list"`
}

// Classifier is stateless apart from its configuration and safe for concurrent use.
type Classifier struct {
	actionFirst bool
	allowed     map[string]struct{}
}

func NewClassifier(cfg Config) *Classifier {
	c := &Classifier{actionFirst: cfg.ActionFirst}
	if len(cfg.AttributeAllowList) > 0 {
		c.allowed = make(map[string]struct{}, len(cfg.AttributeAllowList))
		for _, a := range cfg.AttributeAllowList {
			c.allowed[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
		}
	}
	return c
}

// Classify maps token to an intent for an entity of the given domain. Scene and
// automation targets collapse to ActivateScene and TriggerAutomation.
func (c *Classifier) Classify(token, entityDomain string) (domain.Intent, error) {
	if !c.actionFirst {
		if in, ok := collapse(entityDomain); ok {
			return in, nil
		}
	}

	in, err := c.classifyToken(strings.TrimSpace(token))
	if err != nil && c.actionFirst {
		if collapsed, ok := collapse(entityDomain); ok {
			return collapsed, nil
		}
	}
	return in, err
}

// IsSingleAction reports whether token is a complete action on its own: a power,
// query or percentage keyword or a colour name.
func (c *Classifier) IsSingleAction(token string) bool {
	if domain.IsKeywordAction(token) {
		return true
	}
	_, ok := LookupColor(strings.ToLower(token))
	return ok
}

func collapse(entityDomain string) (domain.Intent, bool) {
	switch entityDomain {
	case domain.DomainScene:
		return domain.ActivateScene(), true
	case domain.DomainAutomation:
		return domain.TriggerAutomation(), true
	}
	return domain.Intent{}, false
}

func (c *Classifier) classifyToken(token string) (domain.Intent, error) {
	t := strings.ToLower(token)

	switch t {
	case "on":
		return domain.PowerOn(), nil
	case "off":
		return domain.PowerOff(), nil
	case "toggle":
		return domain.Toggle(), nil
	case "get", "query":
		return domain.QueryState(), nil
	}

	if strings.HasPrefix(t, "rgb(") {
		return parseRGB(token, t)
	}

	if strings.HasSuffix(t, "%") {
		return parsePercent(token, t)
	}

	if strings.HasPrefix(t, "set ") {
		return c.parseSet(token)
	}

	if rgb, ok := LookupColor(t); ok {
		return domain.SetColorRGB(rgb[0], rgb[1], rgb[2]), nil
	}

	return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: "unrecognized action"}
}

func parseRGB(token, lowered string) (domain.Intent, error) {
	m := rgbPattern.FindStringSubmatch(lowered)
	if m == nil {
		return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: "expected rgb(r,g,b)"}
	}

	parts := strings.Split(m[1], ",")
	if len(parts) != 3 {
		return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: fmt.Sprintf("expected 3 values, got %d", len(parts))}
	}

	var rgb [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: fmt.Sprintf("%q is not an integer", strings.TrimSpace(p))}
		}
		if v < 0 || v > 255 {
			return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: fmt.Sprintf("%d is outside 0-255", v)}
		}
		rgb[i] = v
	}
	return domain.SetColorRGB(rgb[0], rgb[1], rgb[2]), nil
}

func parsePercent(token, lowered string) (domain.Intent, error) {
	raw := strings.TrimSpace(strings.TrimSuffix(lowered, "%"))
	pct, err := strconv.Atoi(raw)
	if err != nil {
		return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: fmt.Sprintf("%q is not a whole percentage", raw)}
	}
	if pct < 0 || pct > 100 {
		return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: fmt.Sprintf("%d%% is outside 0-100", pct)}
	}
	return domain.SetBrightnessPct(pct), nil
}

func (c *Classifier) parseSet(token string) (domain.Intent, error) {
	rest := strings.TrimSpace(token[len("set "):])
	name, value, ok := strings.Cut(rest, " ")
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: "expected set <attribute> <value>"}
	}

	name = strings.ToLower(name)
	if !attributePattern.MatchString(name) {
		return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: fmt.Sprintf("invalid attribute name %q", name)}
	}
	if c.allowed != nil {
		if _, ok := c.allowed[name]; !ok {
			return domain.Intent{}, &domain.InvalidActionError{Token: token, Reason: fmt.Sprintf("attribute %q is not allowed", name)}
		}
	}

	return domain.SetAttribute(name, CoerceValue(value)), nil
}

// CoerceValue types an attribute value for the JSON payload. Numbers are tried
// first; a number that is also an integer literal stays an int, any other number
// becomes a float64 and everything else is kept as a string.
func CoerceValue(s string) any {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return f
}
