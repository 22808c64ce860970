package codec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Name   string   `json:"name"`
	Colors int      `json:"colors"`
	Error  float64  `json:"error"`
	Tags   []string `json:"tags,omitempty"`
}

func TestMarshalReport(t *testing.T) {
	in := report{Name: "a.png", Colors: 16, Error: 0.25}

	data, err := MarshalReport(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"a.png","colors":16,"error":0.25}`, string(data))
	assert.Contains(t, string(data), "\n  \"colors\": 16")
	assert.True(t, strings.HasSuffix(string(data), "}\n"))

	var out report
	require.NoError(t, Default.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMarshalReportError(t *testing.T) {
	_, err := MarshalReport(func() {})
	assert.ErrorContains(t, err, "codec: report")
}
