package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	testCases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		" DEBUG ": zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"bogus":   zerolog.InfoLevel,
	}
	for in, expected := range testCases {
		assert.Equal(t, expected, parseLevel(in), in)
	}
}

func TestNew_StampsService(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "info", "loomd")
	log.Info().Int("machine", 3).Msg("recorded")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "loomd", line["service"])
	assert.Equal(t, "recorded", line["message"])
	assert.EqualValues(t, 3, line["machine"])

	buf.Reset()
	log.Debug().Msg("hidden")
	assert.Empty(t, buf.String())
}
