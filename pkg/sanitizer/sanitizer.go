package sanitizer

import (
	"vistoria/pkg/model"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

// SanitizeChecklist normalizes item labels and drops items left without a
// label, then groups left without items. Inspected flags are kept.
func SanitizeChecklist(groups []model.ChecklistGroup) []model.ChecklistGroup {
	out := make([]model.ChecklistGroup, 0, len(groups))

	for _, g := range groups {
		items := make([]model.ChecklistItem, 0, len(g.Items))
		for _, item := range g.Items {
			item.Label = NormalizeLabel(item.Label)
			if item.Label == "" {
				continue
			}
			items = append(items, item)
		}
		if len(items) == 0 {
			continue
		}
		out = append(out, model.ChecklistGroup{Items: items})
	}

	return out
}
