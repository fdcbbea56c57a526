package jsonrepair

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanIsNoOpOnValidJSON(t *testing.T) {
	fixtures := []string{
		`{}`,
		`{"name":"PixelKeeper","score":92}`,
		`{"palette":{"primary1":"#AAFF00","neutralDark":"#111827"}}`,
		`[{"text":"Fast tab manager","score":88.5},{"text":"Tidy Tabs","score":91}]`,
		`{"nested":{"list":[1,2,3],"flag":true,"none":null}}`,
		`{"quote":"he said \"hi\" and left"}`,
	}

	for _, fixture := range fixtures {
		var direct, repaired any
		require.NoError(t, json.Unmarshal([]byte(fixture), &direct))
		require.NoError(t, Parse(fixture, &repaired))
		assert.Equal(t, direct, repaired, "fixture %q must survive the pipeline untouched", fixture)
	}
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{`{"a":1}`, `{"a":1}`},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StripCodeFence(tc.in))
	}
}

func TestTruncateHexRuns(t *testing.T) {
	assert.Equal(t, `"color":"#FF5733"`, TruncateHexRuns(`"color":"#FF5733333333"`))
	assert.Equal(t, `"color":"#FF5733"`, TruncateHexRuns(`"color":"#FF5733"`))
	// Short tokens are left alone; validation rejects them later.
	assert.Equal(t, `"color":"#FFF"`, TruncateHexRuns(`"color":"#FFF"`))
}

func TestStripTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripTrailingCommas(`{"a":1,}`))
	assert.Equal(t, `[1,2]`, StripTrailingCommas(`[1,2,]`))
	assert.Equal(t, `{"a":[1,2]
}`, StripTrailingCommas(`{"a":[1,2,]
,}`))
}

func TestSalvageMissingClosers(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"one brace", `{"a":{"b":1}`},
		{"two closers", `{"a":{"b":[1,2]`},
		{"three closers", `{"a":{"b":{"c":"x"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var v map[string]any
			require.NoError(t, Parse(tc.in, &v))
			assert.Contains(t, v, "a")
		})
	}
}

func TestSalvageDanglingHexString(t *testing.T) {
	var v map[string]any
	require.NoError(t, Parse(`{"palette":{"primary1":"#AAFF00","accent1":"#FF57`, &v))

	palette, ok := v["palette"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "#AAFF00", palette["primary1"])
	assert.Equal(t, "#FF57", palette["accent1"])
}

func TestParseEmptyInputIsMissingNotMalformed(t *testing.T) {
	var v any
	err := Parse("   \n", &v)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingResponse)
	assert.NotErrorIs(t, err, ErrMalformedResponse)
}

func TestParseGarbageIsMalformed(t *testing.T) {
	var v any
	err := Parse("definitely not json", &v)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseFencedGlitchedResponse(t *testing.T) {
	raw := "```json\n{\"palette\":{\"primary1\":\"#AAFF0000000000\"},\"style\":\"clean\",}\n```"

	var v struct {
		Palette map[string]string `json:"palette"`
		Style   string            `json:"style"`
	}
	require.NoError(t, Parse(raw, &v))
	assert.Equal(t, "#AAFF00", v.Palette["primary1"])
	assert.Equal(t, "clean", v.Style)
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrMissingResponse, ErrMalformedResponse))
}
