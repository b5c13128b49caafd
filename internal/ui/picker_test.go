package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pickerItems() []PickerItem {
	return []PickerItem{
		{Label: "main", SubLabel: "0xAAAA…aaaa", Value: "0xA"},
		{Label: "savings", SubLabel: "0xBBBB…bbbb", Value: "0xB", Current: true},
		{Label: "trading", SubLabel: "0xCCCC…cccc", Value: "0xC"},
	}
}

func TestPickerStartsOnCurrent(t *testing.T) {
	m := newPickerModel("Pick", pickerItems())
	assert.Equal(t, 1, m.cursor)
	assert.Contains(t, m.View(), "(active)")
}

func TestPickerSelect(t *testing.T) {
	m := press(t, newPickerModel("Pick", pickerItems()), "down", "enter").(pickerModel)
	require.NotNil(t, m.selected)
	assert.Equal(t, "0xC", m.selected.Value)
}

func TestPickerNumberJump(t *testing.T) {
	m := press(t, newPickerModel("Pick", pickerItems()), "1").(pickerModel)
	assert.Equal(t, 0, m.cursor)
	m = press(t, m, "7").(pickerModel)
	assert.Equal(t, 0, m.cursor)
}

func TestPickerCancel(t *testing.T) {
	m := press(t, newPickerModel("Pick", pickerItems()), "q").(pickerModel)
	assert.True(t, m.quitting)
	assert.Nil(t, m.selected)
	assert.Empty(t, m.View())
}

func TestPickItemEmpty(t *testing.T) {
	_, err := PickItem("Pick", nil)
	assert.ErrorIs(t, err, ErrNothingToPick)
}
