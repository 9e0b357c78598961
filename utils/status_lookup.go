package utils

import (
	"strings"

	"web-requests/models"
)

var (
	stateSynonyms = map[string][]string{
		models.StatePending: {
			"pending",
			"pendiente",
		},
		models.StatePosted: {
			"posted",
			"publicada",
			"publicado",
			"completed",
		},
	}

	stateLabels = map[string]string{
		models.StatePending: "Pendiente",
		models.StatePosted:  "Publicada",
	}

	stateBySynonym = func() map[string]string {
		out := make(map[string]string)
		for state, synonyms := range stateSynonyms {
			for _, synonym := range synonyms {
				out[synonym] = state
			}
		}
		return out
	}()
)

// NormalizeState maps a state or one of its synonyms to the canonical state.
// Unknown values come back lower-cased and trimmed with ok=false.
func NormalizeState(raw string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if state, ok := stateBySynonym[key]; ok {
		return state, true
	}
	return key, false
}

// StateLabel returns the Spanish label shown in reports.
func StateLabel(state string) string {
	if label, ok := stateLabels[state]; ok {
		return label
	}
	return state
}
