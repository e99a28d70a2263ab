package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnabledCategories_PartialMapKeepsDefaults(t *testing.T) {
	m, err := ParseEnabledCategories(`{"email":false}`)
	require.NoError(t, err)

	assert.False(t, m.Enabled(CategoryEmail))
	for _, c := range AllCategories {
		if c != CategoryEmail {
			assert.True(t, m.Enabled(c), c)
		}
	}
}

func TestParseEnabledCategories_Malformed(t *testing.T) {
	_, err := ParseEnabledCategories(`{not json`)
	require.Error(t, err)
}

func TestEnabledCategories_MarshalRoundTrip(t *testing.T) {
	m := DefaultEnabledCategories()
	m[CategoryCode] = false

	raw, err := m.Marshal()
	require.NoError(t, err)

	parsed, err := ParseEnabledCategories(raw)
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}

func TestEnabledCategories_MissingCountsAsEnabled(t *testing.T) {
	assert.True(t, EnabledCategories{}.Enabled(CategoryURL))
	assert.False(t, EnabledCategories{CategoryURL: false}.Enabled(CategoryURL))
}

func TestEnabledCategories_CloneIsIndependent(t *testing.T) {
	m := DefaultEnabledCategories()
	c := m.Clone()
	c[CategoryText] = false

	assert.True(t, m.Enabled(CategoryText))
}

func TestCategory_StyleFallsBackToText(t *testing.T) {
	unknown := Category("image")

	assert.False(t, unknown.Valid())
	assert.Equal(t, CategoryText.Color(), unknown.Color())
	assert.Equal(t, CategoryText.Icon(), unknown.Icon())
	assert.Equal(t, "#EF4444", CategoryPassword.Color())
}
