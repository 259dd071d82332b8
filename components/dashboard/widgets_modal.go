package dashboard

import "strings"

// InteractionTypes lists the channels an agent can log.
var InteractionTypes = []string{"call", "email", "chat", "meeting", "other"}

type interactionTypeOption struct {
	Value    string
	Label    string
	Selected bool
}

// RenderInteractionModal rebuilds the interaction form with the current draft.
func (w *WidgetRenderer) RenderInteractionModal(page *Page, mountID string, draft InteractionDraft, open bool, suggestions []string) error {
	if !page.Has(mountID) {
		return nil
	}
	options := make([]interactionTypeOption, len(InteractionTypes))
	for i, t := range InteractionTypes {
		options[i] = interactionTypeOption{
			Value:    t,
			Label:    strings.ToUpper(t[:1]) + t[1:],
			Selected: t == draft.InteractionType,
		}
	}
	return w.renderInto(page, mountID, templateInteractionModal, map[string]any{
		"open":        open,
		"draft":       draft,
		"types":       options,
		"suggestions": suggestions,
	})
}

// suggestionsFor turns recommendations into one-click recommendation notes.
func suggestionsFor(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, rec := range recs {
		if rec.Name == "" {
			continue
		}
		out = append(out, "Recommended "+rec.Name)
	}
	return out
}
