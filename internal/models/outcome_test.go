package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSucceeded(t *testing.T) {
	outcome := Succeeded("https://example.com/a", 12.5, 40, 150*time.Millisecond)

	assert.Equal(t, StatusOK, outcome.Status)
	require.NotNil(t, outcome.Score)
	require.NotNil(t, outcome.WordCount)
	assert.Equal(t, 12.5, *outcome.Score)
	assert.Equal(t, 40, *outcome.WordCount)
}

func TestSucceededZeroScoreIsPresent(t *testing.T) {
	outcome := Succeeded("https://example.com/a", 0, 0, 0)

	require.NotNil(t, outcome.Score)
	assert.Zero(t, *outcome.Score)
}

func TestFailed(t *testing.T) {
	for _, status := range []ProcessingStatus{StatusFetchError, StatusParsingError, StatusTimeout} {
		t.Run(status.String(), func(t *testing.T) {
			outcome := Failed("https://example.com/b", status)
			assert.Equal(t, status, outcome.Status)
			assert.Nil(t, outcome.Score)
			assert.Nil(t, outcome.WordCount)
		})
	}
}

func TestProcessingStatusValid(t *testing.T) {
	for _, status := range Statuses {
		assert.True(t, status.Valid(), status)
	}
	assert.False(t, ProcessingStatus("DONE").Valid())
	assert.False(t, ProcessingStatus("").Valid())
}
