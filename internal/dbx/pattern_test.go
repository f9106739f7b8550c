package dbx_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorsync/core/internal/dbx"
)

func TestBuildFindPattern_Empty(t *testing.T) {
	assert.Equal(t, "", dbx.BuildFindPattern(""))
	assert.Equal(t, "", dbx.BuildFindPattern("   "))
}

func TestBuildFindPattern_TwoTokensNoSoftening(t *testing.T) {
	pattern := dbx.BuildFindPattern("ковролин синий")

	re, err := regexp.Compile(pattern)
	require.NoError(t, err)

	assert.True(t, re.MatchString("КОВРОЛИН СИНИЙ"))
	assert.True(t, re.MatchString("ковролин, синий"))
}

func TestBuildFindPattern_ThreeTokensSoftensLast(t *testing.T) {
	pattern := dbx.BuildFindPattern("ковролин синий 4м")

	re, err := regexp.Compile(pattern)
	require.NoError(t, err)

	// the trailing "м" on the last token is optional once there are >2 tokens.
	assert.True(t, re.MatchString("ковролин синий 4"))
	assert.True(t, re.MatchString("ковролин синий 4м"))
}

func TestBuildFindPattern_EscapesRegexMetacharacters(t *testing.T) {
	pattern := dbx.BuildFindPattern("3.5x4")

	re, err := regexp.Compile(pattern)
	require.NoError(t, err)

	assert.False(t, re.MatchString("3x5x4"), "the literal dot must not match any character")
}
