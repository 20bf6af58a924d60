package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hactl/internal/domain"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input      string
		wantTarget string
		wantAction string
	}{
		{"homeassistant living room light on", "living room light", "on"},
		{"HomeAssistant kitchen off", "kitchen", "off"},
		{"homeassistant  desk   lamp   50%", "desk lamp", "50%"},
		{"homeassistant lamp rgb(255, 0, 128)", "lamp", "rgb(255, 0, 128)"},
		{"homeassistant thermostat set temperature 21.5", "thermostat", "set temperature 21.5"},
		{"homeassistant tv set source hdmi 1", "tv", "set source hdmi 1"},
		{"homeassistant sunset scene on", "sunset scene", "on"},
		{"homeassistant set top box off", "set top box", "off"},
		{"homeassistant tv set top box on", "tv set top box", "on"},
		{"homeassistant tv set top box 40%", "tv set top box", "40%"},
		{"homeassistant lamp set effect rainbow", "lamp", "set effect rainbow"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := domain.ParseCommand(tt.input, domain.DefaultKeyword)
			require.NoError(t, err)
			assert.Equal(t, tt.wantTarget, cmd.Target)
			assert.Equal(t, tt.wantAction, cmd.Action)
			assert.Equal(t, tt.input, cmd.Raw)
		})
	}
}

func TestParseCommandFunc_ColourEndsTarget(t *testing.T) {
	isColour := func(token string) bool { return token == "red" }

	cmd, err := domain.ParseCommandFunc("homeassistant tv set top box red", domain.DefaultKeyword, isColour)
	require.NoError(t, err)
	assert.Equal(t, "tv set top box", cmd.Target)
	assert.Equal(t, "red", cmd.Action)

	cmd, err = domain.ParseCommandFunc("homeassistant lamp set effect rainbow", domain.DefaultKeyword, isColour)
	require.NoError(t, err)
	assert.Equal(t, "lamp", cmd.Target)
	assert.Equal(t, "set effect rainbow", cmd.Action)
}

func TestIsKeywordAction(t *testing.T) {
	for _, tok := range []string{"on", "OFF", "toggle", "get", "query", "40%"} {
		assert.True(t, domain.IsKeywordAction(tok), tok)
	}
	for _, tok := range []string{"set", "box", "%", "abc%", "red"} {
		assert.False(t, domain.IsKeywordAction(tok), tok)
	}
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []string{
		"",
		"homeassistant",
		"homeassistant light",
		"alexa kitchen light on",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := domain.ParseCommand(input, domain.DefaultKeyword)
			var parseErr *domain.ParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, input, parseErr.Input)
			assert.Equal(t, domain.StatusParseError, domain.StatusOf(err))
		})
	}
}

func TestParseCommand_CustomKeyword(t *testing.T) {
	cmd, err := domain.ParseCommand("ha desk lamp toggle", "ha")
	require.NoError(t, err)
	assert.Equal(t, "desk lamp", cmd.Target)

	_, err = domain.ParseCommand("homeassistant desk lamp toggle", "ha")
	assert.Error(t, err)
}

func TestSplitChain(t *testing.T) {
	assert.Equal(t,
		[]string{"homeassistant a on", "homeassistant b off"},
		domain.SplitChain(" homeassistant a on&&homeassistant b off && "),
	)
	assert.Empty(t, domain.SplitChain(" && "))
	assert.Equal(t, []string{"homeassistant a on"}, domain.SplitChain("homeassistant a on"))
}

func TestEntityDomain(t *testing.T) {
	assert.Equal(t, "light", domain.Entity{ID: "light.kitchen"}.Domain())
	assert.Equal(t, "input_boolean", domain.DomainOf("input_boolean.guest_mode"))
	assert.Equal(t, "", domain.DomainOf("nodot"))
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("connection refused")
	call := domain.ServiceCall{Domain: "light", Service: "turn_on"}

	tests := []struct {
		err    error
		want   string
		status domain.Status
	}{
		{
			&domain.NotFoundError{Phrase: "desk lamb", Suggestion: "Desk Lamp", Score: 0.9},
			"I couldn't find a close match for 'desk lamb'. Did you mean 'Desk Lamp'?",
			domain.StatusNotFound,
		},
		{
			&domain.NotFoundError{Phrase: "the", Available: []string{"Desk Lamp", "Kitchen"}},
			"I couldn't find 'the'. Available: Desk Lamp, Kitchen",
			domain.StatusNotFound,
		},
		{
			&domain.InvalidActionError{Token: "blorp"},
			"invalid action 'blorp'",
			domain.StatusInvalidAction,
		},
		{
			&domain.FetchError{Err: cause},
			"no entities available: connection refused",
			domain.StatusFetchError,
		},
		{
			&domain.CallError{Call: call, Err: cause},
			"calling light.turn_on: connection refused",
			domain.StatusCallError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.Equal(t, tt.status, domain.StatusOf(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}

	assert.ErrorIs(t, &domain.CallError{Call: call, Err: cause}, cause)
	assert.ErrorIs(t, &domain.FetchError{Err: cause}, cause)
}

func TestFailure(t *testing.T) {
	err := &domain.DomainMismatchError{EntityID: "sensor.temp", Domain: "sensor", Intent: domain.IntentPowerOn}
	out := domain.Failure("homeassistant temp on", err)

	assert.Equal(t, domain.StatusDomainMismatch, out.Status)
	assert.Equal(t, err.Error(), out.Message)
	assert.False(t, out.OK())
	assert.Same(t, err, out.Err)
}

func TestIntentDescribe(t *testing.T) {
	tests := []struct {
		intent domain.Intent
		want   string
	}{
		{domain.PowerOn(), "Turned on Kitchen"},
		{domain.PowerOff(), "Turned off Kitchen"},
		{domain.Toggle(), "Toggled Kitchen"},
		{domain.SetColorRGB(255, 0, 128), "Set Kitchen color to rgb(255,0,128)"},
		{domain.SetBrightnessPct(40), "Set Kitchen brightness to 40%"},
		{domain.SetAttribute("temperature", 21.5), "Set Kitchen temperature to 21.5"},
		{domain.ActivateScene(), "Activated scene Kitchen"},
		{domain.TriggerAutomation(), "Triggered automation Kitchen"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.intent.Describe("Kitchen"))
		})
	}
}
