package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrompterConfirm(t *testing.T) {
	var out bytes.Buffer
	p := &Prompter{In: strings.NewReader("y\nno\nYES\n"), Out: &out}
	assert.True(t, p.Confirm("sure?"))
	assert.False(t, p.Confirm("sure?"))
	assert.True(t, p.ConfirmDanger("really?"))
	assert.Contains(t, out.String(), "[y/N]")
}

func TestPrompterInputDefault(t *testing.T) {
	p := &Prompter{In: strings.NewReader("\nsavings\n"), Out: &bytes.Buffer{}}
	assert.Equal(t, "main", p.Input("Nickname", "main"))
	assert.Equal(t, "savings", p.Input("Nickname", "main"))
	assert.Equal(t, "", p.Input("Nickname", ""))
}
