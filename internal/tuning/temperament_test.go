package tuning

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTemperamentInvariants(t *testing.T) {
	_, err := NewTemperament(TemperamentConfig{
		PeriodNames: []string{"a", "b", "c"}, // below MinPeriodSize
	})
	require.Error(t, err)

	_, err = NewTemperament(TemperamentConfig{
		PeriodNames:         []string{"a", "b", "c", "d", "e"},
		NumDisplayedPeriods: 1,
		MiddleC:             10, // out of range
	})
	require.Error(t, err)
}

func TestTwelveToneEqual(t *testing.T) {
	tp := TwelveToneEqual()
	assert.Equal(t, 12, tp.PeriodSize())
	assert.Equal(t, tp.PeriodSize()*tp.NumDisplayedPeriods(), tp.NumKeys())
	assert.True(t, tp.MiddleC() >= 0 && tp.MiddleC() < tp.NumKeys())
	assert.Equal(t, "C", tp.PeriodName(0))
	assert.True(t, tp.IsWhiteKey(0))
	assert.False(t, tp.IsWhiteKey(1))
}

func TestNineteenToneEqual(t *testing.T) {
	tp := NineteenToneEqual()
	assert.Equal(t, 19, tp.PeriodSize())
	assert.Equal(t, tp.PeriodSize()*tp.NumDisplayedPeriods(), tp.NumKeys())
}

func TestKeyboardMappingDefaultDiagonal(t *testing.T) {
	m := NewKeyboardMapping(16)
	e := m.Map(60, 1)
	assert.Equal(t, KeyEntry{Key: 60, Channel: 1}, e)
	assert.Empty(t, m.Serialize())
}

func TestKeyboardMappingOverrideRoundTrip(t *testing.T) {
	m := NewKeyboardMapping(16)
	m.Set(60, 1, KeyEntry{Key: 67, Channel: 2})
	assert.Equal(t, KeyEntry{Key: 67, Channel: 2}, m.Map(60, 1))

	serialized := m.Serialize()
	restored, err := DeserializeKeyboardMapping(16, serialized)
	require.NoError(t, err)
	assert.Equal(t, KeyEntry{Key: 67, Channel: 2}, restored.Map(60, 1))
	assert.Equal(t, m.Serialize(), restored.Serialize())
}

func TestKeyboardMappingSetDefaultClearsOverride(t *testing.T) {
	m := NewKeyboardMapping(16)
	m.Set(60, 1, KeyEntry{Key: 67, Channel: 2})
	m.Set(60, 1, KeyEntry{Key: 60, Channel: 1})
	assert.Empty(t, m.Serialize())
}

func TestTemperamentJSONRoundTrip(t *testing.T) {
	tp := TwelveToneEqual()
	data, err := json.Marshal(tp)
	require.NoError(t, err)

	var back Temperament
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, tp.ID(), back.ID())
	assert.Equal(t, tp.PeriodSize(), back.PeriodSize())
	assert.Equal(t, tp.MiddleC(), back.MiddleC())
	assert.Equal(t, tp.PeriodName(1), back.PeriodName(1))
}

func TestImportScalaMapping(t *testing.T) {
	content := "! comment\n4\n60\n0\n1\nx\n3\n"
	m, err := ImportScalaMapping(content)
	require.NoError(t, err)
	assert.Equal(t, KeyEntry{Key: 60, Channel: 1}, m.Map(60, 1))
	assert.Equal(t, KeyEntry{Key: 62, Channel: 1}, m.Map(61, 1))
	assert.Equal(t, KeyEntry{Key: 62, Channel: 1}, m.Map(62, 1)) // unmapped -> identity
	assert.Equal(t, KeyEntry{Key: 66, Channel: 1}, m.Map(63, 1))
}
