package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ssw-logs/logbroker/logcore"
)

func TestByLevel_EnabledRejectsBelowThreshold(t *testing.T) {
	f := NewByLevel(logcore.LevelMoreSevereEqual(logcore.Warn))

	assert.Equal(t, logcore.Neutral, f.Enabled(logcore.Metadata{Level: logcore.Error}, nil))
	assert.Equal(t, logcore.Reject, f.Enabled(logcore.Metadata{Level: logcore.Info}, nil))
}

func TestByLevel_MatchesMirrorsEnabled(t *testing.T) {
	f := NewByLevel(logcore.LevelMoreSevereEqual(logcore.Warn))
	rec := logcore.NewBuilder("app").Level(logcore.Debug).Build()
	assert.Equal(t, logcore.Reject, f.Matches(rec, nil))
}
