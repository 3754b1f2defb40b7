package filter

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isoburn/isoburn/isotree"
)

func TestExternalRunPassesDataThroughCat(t *testing.T) {
	ext := &isotree.ExternalFilter{Name: "identity", Argv: []string{"cat"}}
	out, err := externalRun(ext, io.NopCloser(strings.NewReader("hello external filter\n")))
	require.NoError(t, err)
	defer out.Close()

	got, err := io.ReadAll(out)
	require.NoError(t, err)
	assert.Equal(t, "hello external filter\n", string(got))
}

func TestExternalRunRejectsEmptyArgv(t *testing.T) {
	ext := &isotree.ExternalFilter{Name: "broken"}
	_, err := externalRun(ext, io.NopCloser(strings.NewReader("x")))
	assert.Error(t, err)
}

func TestExternalRunErrorsOnMissingBinary(t *testing.T) {
	ext := &isotree.ExternalFilter{Name: "missing", Argv: []string{"this-binary-does-not-exist-xyz"}}
	_, err := externalRun(ext, io.NopCloser(strings.NewReader("x")))
	assert.Error(t, err)
}
