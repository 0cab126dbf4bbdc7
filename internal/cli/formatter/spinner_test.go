package formatter

import (
	"testing"

	"github.com/alexanderramin/dayplan/internal/teatest"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/stretchr/testify/assert"
)

func TestSpinnerModel_RendersUntilDone(t *testing.T) {
	d := teatest.New(t, spinnerModel{spinner: spinner.New(spinner.WithSpinner(spinner.Dot)), message: "Planning your day"})
	d.DrainInit()

	assert.Contains(t, d.View(), "Planning your day")
	assert.False(t, d.Quitting)

	d.Send(spinnerDoneMsg{})
	assert.True(t, d.Quitting)
	assert.Empty(t, d.View())
}
