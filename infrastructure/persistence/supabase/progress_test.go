package supabase

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDecodeCollectedIDs(t *testing.T) {
	logger := zap.NewNop()

	assert.Empty(t, decodeCollectedIDs("", logger))
	assert.Empty(t, decodeCollectedIDs("not json", logger))
	assert.Empty(t, decodeCollectedIDs(`{"a":1}`, logger))
	assert.Equal(t, []string{"carp", "perch"}, decodeCollectedIDs(`["carp","perch"]`, logger))
	// Non-string entries are dropped, not fatal.
	assert.Equal(t, []string{"carp"}, decodeCollectedIDs(`["carp",42,null]`, logger))
}
