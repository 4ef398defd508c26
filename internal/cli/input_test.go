package cli

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("  Ada Lovelace \n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Full name", &out)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", got)
	assert.Equal(t, "Full name\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(in, "Name?", &out)
	require.Error(t, err)
}

func TestGetPIN(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) { return []byte("2468"), nil }

	var out bytes.Buffer
	pin, err := GetPIN(&out, "Enter PIN")
	require.NoError(t, err)
	assert.Equal(t, []byte("2468"), pin)
	assert.Equal(t, "Enter PIN: \n", out.String())
}

func TestGetPIN_Error(t *testing.T) {
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	readPassword = func(int) ([]byte, error) {
		return nil, errors.New("boom")
	}

	var out bytes.Buffer
	_, err := GetPIN(&out, "Enter PIN")
	require.Error(t, err)
}
