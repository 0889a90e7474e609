package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, InfoLevel, ParseLevel("verbose"))
	assert.Equal(t, InfoLevel, ParseLevel(""))
}

func TestConfigure(t *testing.T) {
	t.Run("json output carries component", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Configure(Config{Level: InfoLevel, Output: buf})

		l := Component("register")
		l.Info().Int64("classID", 4).Msg("saved")

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "register", entry["component"])
		assert.Equal(t, "saved", entry["message"])
		assert.EqualValues(t, 4, entry["classID"])
	})

	t.Run("level filters debug", func(t *testing.T) {
		buf := &bytes.Buffer{}
		Configure(Config{Level: WarnLevel, Output: buf})

		Info().Msg("hidden")
		assert.Empty(t, buf.String())

		Warn().Msg("shown")
		assert.Contains(t, buf.String(), "shown")
	})
}
