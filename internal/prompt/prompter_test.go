package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskTrimsAndFormatsPrompt(t *testing.T) {
	script := NewScript("  Acme billing  ")
	p := NewPrompter(script, nil)

	answer, err := p.Ask("Business Context")
	require.NoError(t, err)
	assert.Equal(t, "Acme billing", answer)
	assert.Equal(t, []string{"Business Context: "}, script.Prompts)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		answer     string
		defaultYes bool
		want       bool
	}{
		{"y", false, true},
		{"YES", false, true},
		{"", false, false},
		{"sure", false, false},
		{"", true, true},
		{"maybe", true, true},
		{"n", true, false},
		{"No", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			p := NewPrompter(NewScript(tt.answer), nil)
			got, err := p.Confirm("Continue? (y/N)", tt.defaultYes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestList(t *testing.T) {
	var out bytes.Buffer
	script := NewScript("first", " second ", "", "unread")
	p := NewPrompter(script, &out)

	items, err := p.List("In Scope Items (enter items one by one, empty line to finish):")
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, items)
	assert.Equal(t, []string{"1. ", "2. ", "3. "}, script.Prompts)
	assert.Equal(t, "In Scope Items (enter items one by one, empty line to finish):\n", out.String())
	assert.Equal(t, 1, script.Remaining())
}

func TestListEmpty(t *testing.T) {
	p := NewPrompter(NewScript(""), nil)
	items, err := p.List("Items")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestListEOF(t *testing.T) {
	p := NewPrompter(NewScript("one"), nil)
	_, err := p.List("Items")
	assert.ErrorIs(t, err, io.EOF)
}

func TestChoose(t *testing.T) {
	options := []string{"Platform (PLT)", "Growth (GRO)"}

	tests := []struct {
		answer string
		index  int
		ok     bool
	}{
		{"1", 0, true},
		{"2", 1, true},
		{"0", 0, false},
		{"3", 0, false},
		{"two", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(NewScript(tt.answer), &out)
			idx, answer, ok, err := p.Choose("Select team number", options)
			require.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.index, idx)
			assert.Equal(t, tt.answer, answer)
			assert.Equal(t, "1. Platform (PLT)\n2. Growth (GRO)\n", out.String())
		})
	}
}

func TestScannerReader(t *testing.T) {
	var out bytes.Buffer
	r := NewScannerReader(strings.NewReader("alpha\r\nbeta\n"), &out)

	line, err := r.ReadLine("first: ")
	require.NoError(t, err)
	assert.Equal(t, "alpha", line)

	line, err = r.ReadLine("second: ")
	require.NoError(t, err)
	assert.Equal(t, "beta", line)

	_, err = r.ReadLine("third: ")
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "first: second: third: ", out.String())
}

func TestIsYes(t *testing.T) {
	assert.True(t, IsYes(" Y ", false))
	assert.False(t, IsYes("yep", false))
	assert.True(t, IsYes("yep", true))
	assert.False(t, IsYes("NO", true))
}
