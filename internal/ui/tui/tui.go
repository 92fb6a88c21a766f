package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/PizzaHomicide/clipreel/internal/ui/tui/models"
)

// Run blocks until the user quits the player
func Run(controller models.Controller) error {
	p := tea.NewProgram(models.NewAppModel(controller), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
