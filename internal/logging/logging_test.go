package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, format := range []string{"", "json", "console", "text"} {
		log, err := New("weather-monitoring", "debug", format)
		require.NoError(t, err, format)
		assert.NotNil(t, log)
	}
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New("weather-monitoring", "loud", "json")
	assert.Error(t, err)

	_, err = New("weather-monitoring", "info", "xml")
	assert.Error(t, err)
}
