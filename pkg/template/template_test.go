package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func templateData() map[string]any {
	return map[string]any{
		"event": map[string]any{
			"event_type": "USER_REGISTERED",
			"name":       "Ada",
			"email":      "ada@example.com",
			"credits":    10.0,
			"verified":   true,
			"profile": map[string]any{
				"country": "PT",
			},
		},
		"execution": map[string]any{
			"id": "exec-1",
		},
	}
}

func TestRender(t *testing.T) {
	data := templateData()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no placeholders pass through", input: "plain text", want: "plain text"},
		{name: "simple path", input: "Welcome {{event.name}}!", want: "Welcome Ada!"},
		{name: "whitespace inside braces", input: "{{ event.name }}", want: "Ada"},
		{name: "nested path", input: "{{event.profile.country}}", want: "PT"},
		{name: "number renders without exponent", input: "{{event.credits}}", want: "10"},
		{name: "boolean", input: "{{event.verified}}", want: "true"},
		{name: "unresolved path renders empty", input: "[{{event.missing}}]", want: "[]"},
		{name: "multiple placeholders", input: "{{event.name}} <{{event.email}}>", want: "Ada <ada@example.com>"},
		{name: "map value renders as json", input: "{{event.profile}}", want: `{"country":"PT"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Render(tt.input, data))
		})
	}
}

func TestRender_LiteralSubstitutionOnly(t *testing.T) {
	// A payload value containing placeholder syntax is substituted as text,
	// never re-evaluated.
	data := map[string]any{
		"event": map[string]any{
			"name":   "{{event.email}}",
			"email":  "ada@example.com",
			"secret": "hunter2",
		},
	}

	assert.Equal(t, "{{event.email}}", Render("{{event.name}}", data))
}

func TestRenderParameters(t *testing.T) {
	data := templateData()

	parameters := map[string]any{
		"to":      "{{event.email}}",
		"subject": "Welcome {{event.name}}",
		"retries": 3,
		"meta": map[string]any{
			"country": "{{event.profile.country}}",
		},
		"tags": []any{"welcome", "{{event.event_type}}"},
	}

	rendered := RenderParameters(parameters, data)

	assert.Equal(t, "ada@example.com", rendered["to"])
	assert.Equal(t, "Welcome Ada", rendered["subject"])
	assert.Equal(t, 3, rendered["retries"])

	meta := rendered["meta"].(map[string]any)
	assert.Equal(t, "PT", meta["country"])

	tags := rendered["tags"].([]any)
	assert.Equal(t, []any{"welcome", "USER_REGISTERED"}, tags)

	// The input map is untouched.
	assert.Equal(t, "{{event.email}}", parameters["to"])
}

func TestRenderParameters_Nil(t *testing.T) {
	assert.NotNil(t, RenderParameters(nil, templateData()))
}
