package servicecall_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hactl/internal/domain"
	"hactl/internal/servicecall"
)

var (
	livingRoom  = domain.Entity{ID: "light.lr", Name: "Living Room Light", State: "off"}
	deskSwitch  = domain.Entity{ID: "switch.desk", Name: "Desk"}
	thermostat  = domain.Entity{ID: "climate.hall", Name: "Hall Thermostat"}
	movieNight  = domain.Entity{ID: "scene.movie_night", Name: "movie night"}
	goodMorning = domain.Entity{ID: "automation.good_morning", Name: "Good Morning"}
	bedroomTemp = domain.Entity{ID: "sensor.bedroom_temperature", Name: "Bedroom Temperature"}
)

func TestBuild(t *testing.T) {
	tests := []struct {
		name   string
		entity domain.Entity
		intent domain.Intent
		want   domain.ServiceCall
	}{
		{
			name:   "power on light",
			entity: livingRoom,
			intent: domain.PowerOn(),
			want:   domain.ServiceCall{Domain: "light", Service: "turn_on", Payload: map[string]any{"entity_id": "light.lr"}},
		},
		{
			name:   "power off switch",
			entity: deskSwitch,
			intent: domain.PowerOff(),
			want:   domain.ServiceCall{Domain: "switch", Service: "turn_off", Payload: map[string]any{"entity_id": "switch.desk"}},
		},
		{
			name:   "toggle",
			entity: deskSwitch,
			intent: domain.Toggle(),
			want:   domain.ServiceCall{Domain: "switch", Service: "toggle", Payload: map[string]any{"entity_id": "switch.desk"}},
		},
		{
			name:   "rgb color",
			entity: livingRoom,
			intent: domain.SetColorRGB(255, 0, 0),
			want: domain.ServiceCall{Domain: "light", Service: "turn_on", Payload: map[string]any{
				"entity_id": "light.lr",
				"rgb_color": []int{255, 0, 0},
			}},
		},
		{
			name:   "brightness",
			entity: livingRoom,
			intent: domain.SetBrightnessPct(50),
			want: domain.ServiceCall{Domain: "light", Service: "turn_on", Payload: map[string]any{
				"entity_id":      "light.lr",
				"brightness_pct": 50,
			}},
		},
		{
			name:   "set attribute",
			entity: thermostat,
			intent: domain.SetAttribute("temperature", 21.5),
			want: domain.ServiceCall{Domain: "climate", Service: "set_temperature", Payload: map[string]any{
				"entity_id":   "climate.hall",
				"temperature": 21.5,
			}},
		},
		{
			name:   "scene",
			entity: movieNight,
			intent: domain.ActivateScene(),
			want:   domain.ServiceCall{Domain: "scene", Service: "turn_on", Payload: map[string]any{"entity_id": "scene.movie_night"}},
		},
		{
			name:   "automation",
			entity: goodMorning,
			intent: domain.TriggerAutomation(),
			want:   domain.ServiceCall{Domain: "automation", Service: "trigger", Payload: map[string]any{"entity_id": "automation.good_morning"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := servicecall.Build(tt.entity, tt.intent)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestBuild_QueryStateMakesNoCall(t *testing.T) {
	got, err := servicecall.Build(bedroomTemp, domain.QueryState())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestBuild_DomainMismatch(t *testing.T) {
	tests := []struct {
		name   string
		entity domain.Entity
		intent domain.Intent
	}{
		{name: "color on switch", entity: deskSwitch, intent: domain.SetColorRGB(1, 2, 3)},
		{name: "brightness on climate", entity: thermostat, intent: domain.SetBrightnessPct(10)},
		{name: "scene on light", entity: livingRoom, intent: domain.ActivateScene()},
		{name: "trigger on scene", entity: movieNight, intent: domain.TriggerAutomation()},
		{name: "power on sensor", entity: bedroomTemp, intent: domain.PowerOn()},
		{name: "set on sensor", entity: bedroomTemp, intent: domain.SetAttribute("value", 1)},
		{name: "set on scene", entity: movieNight, intent: domain.SetAttribute("transition", 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := servicecall.Build(tt.entity, tt.intent)
			assert.Nil(t, got)

			var mismatch *domain.DomainMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tt.entity.ID, mismatch.EntityID)
			assert.Equal(t, tt.intent.Kind, mismatch.Intent)
		})
	}
}

func TestKindOf_RoundTrip(t *testing.T) {
	cases := []struct {
		entity domain.Entity
		intent domain.Intent
	}{
		{livingRoom, domain.PowerOn()},
		{livingRoom, domain.PowerOff()},
		{livingRoom, domain.Toggle()},
		{livingRoom, domain.SetColorRGB(0, 128, 0)},
		{livingRoom, domain.SetBrightnessPct(0)},
		{thermostat, domain.SetAttribute("hvac_mode", "heat")},
		{movieNight, domain.ActivateScene()},
		{goodMorning, domain.TriggerAutomation()},
	}

	for _, c := range cases {
		call, err := servicecall.Build(c.entity, c.intent)
		require.NoError(t, err)
		assert.Equal(t, c.intent.Kind, servicecall.KindOf(*call), call.String())
	}
}
