package keybindings

import (
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestNoDuplicateKeyBindings(t *testing.T) {
	// Check each context individually, including the global keys that are active alongside it
	for contextName, bindings := range ContextBindings {
		t.Run(fmt.Sprintf("Context_%s", contextName), func(t *testing.T) {
			keyToAction := make(map[string]Action)
			all := bindings
			if contextName != ContextGlobal {
				all = append(append([]Binding{}, globalBindings...), bindings...)
			}

			for _, binding := range all {
				for _, key := range []string{binding.KeyMap.Primary, binding.KeyMap.Secondary} {
					if key == "" {
						continue
					}
					if existingAction, exists := keyToAction[key]; exists {
						t.Errorf("Duplicate key binding '%s' in context '%s': "+
							"first assigned to action '%s', then to '%s'",
							key, contextName, existingAction, binding.Action)
						continue
					}
					keyToAction[key] = binding.Action
				}
			}
		})
	}
}

func TestGetActionByKey(t *testing.T) {
	assert.Equal(t, ActionPlayPause, GetActionByKey(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, ContextPlayer))
	assert.Equal(t, ActionNextClip, GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'n'}}, ContextPlayer))
	assert.Equal(t, ActionMoveClipDown, GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'J'}}, ContextPlayer))
	assert.Equal(t, ActionMoveUp, GetActionByKey(tea.KeyMsg{Type: tea.KeyUp}, ContextPlayer))
	assert.Equal(t, Action(""), GetActionByKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'z'}}, ContextPlayer))
	assert.Equal(t, "space", DisplayKey(GetActionKey(ActionPlayPause, playerBindings)))
}
