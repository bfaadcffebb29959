package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalybrate/kalybrate/internal/models"
)

func TestRegions(t *testing.T) {
	response := "Here you go:\n```python\nprint('hi')\n```\nAnd config:\n```\nkey: value\n```\n"

	regions := Regions(response)
	require.Len(t, regions, 2)
	assert.Equal(t, "python", regions[0].Language)
	assert.Equal(t, "print('hi')", regions[0].Body)
	assert.Equal(t, "", regions[1].Language)
	assert.Equal(t, "key: value", regions[1].Body)
}

func TestRegionsUnterminatedFence(t *testing.T) {
	regions := Regions("```go\npackage main\nfunc main() {}\n")
	require.Len(t, regions, 1)
	assert.Equal(t, "go", regions[0].Language)
	assert.Contains(t, regions[0].Body, "package main")
}

func TestBestRegion(t *testing.T) {
	long := strings.Repeat("x", 100)

	tests := []struct {
		name    string
		regions []Region
		want    string
		ok      bool
	}{
		{"prefers tagged code over earlier untagged", []Region{
			{Language: "", Body: long},
			{Language: "go", Body: "package main"},
		}, "package main", true},
		{"falls back to first substantial region", []Region{
			{Language: "", Body: "short"},
			{Language: "", Body: long},
		}, long, true},
		{"falls back to first region", []Region{
			{Language: "", Body: "short"},
		}, "short", true},
		{"no regions", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BestRegion(tt.regions)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got.Body)
		})
	}
}

func TestClassify(t *testing.T) {
	withCode := "Here:\n```python\nprint('hi')\n```\n"

	assert.Equal(t, models.OutputCode, Classify(withCode, false))
	assert.Equal(t, models.OutputText, Classify("Just prose.", false))

	// a materialized file wins even when the response contains code
	assert.Equal(t, models.OutputFile, Classify(withCode, true))
	assert.Equal(t, models.OutputFile, Classify("Saved it for you.", true))
}

func TestIsCodeLanguage(t *testing.T) {
	assert.True(t, IsCodeLanguage("go"))
	assert.True(t, IsCodeLanguage("Python"))
	assert.False(t, IsCodeLanguage("yaml"))
	assert.False(t, IsCodeLanguage(""))
}
