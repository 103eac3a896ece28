package model

type PeriodUnit string

const (
	PeriodDay   PeriodUnit = "dia"
	PeriodWeek  PeriodUnit = "semana"
	PeriodMonth PeriodUnit = "mes"
)

// Period is the recurrence descriptor of an equipment. It is informational only.
type Period struct {
	Value int        `json:"value" bson:"periodoValor" validate:"required,min=1,max=365"`
	Unit  PeriodUnit `json:"unit" bson:"tipo" validate:"required,oneof=dia semana mes"`
}

type ChecklistItem struct {
	Label     string `json:"label" bson:"trabalho" validate:"required,min=1,max=200"`
	Inspected bool   `json:"inspected" bson:"vistoriado"`
}

type ChecklistGroup struct {
	Items []ChecklistItem `json:"items" bson:"servicos" validate:"dive"`
}

// Equipment durations are whole seconds. RemainingDuration is owned by the
// calendar reconciler and must stay within [0, TotalDuration].
type Equipment struct {
	ID                string           `json:"id"`
	Name              string           `json:"name"`
	TotalDuration     int64            `json:"total_duration"`
	RemainingDuration int64            `json:"remaining_duration"`
	Period            Period           `json:"period"`
	Checklist         []ChecklistGroup `json:"checklist"`
}

// Clone returns a deep copy so snapshots never share checklist slices.
func (e *Equipment) Clone() *Equipment {
	c := *e
	c.Checklist = make([]ChecklistGroup, len(e.Checklist))
	for i, g := range e.Checklist {
		c.Checklist[i] = ChecklistGroup{Items: append([]ChecklistItem(nil), g.Items...)}
	}
	return &c
}

// LedgerCorrupt reports the state the validator refuses to schedule against.
func (e *Equipment) LedgerCorrupt() bool {
	return e.RemainingDuration > e.TotalDuration
}

type EquipmentRegistration struct {
	Name      string           `json:"name" validate:"required,min=2,max=100"`
	Hours     int              `json:"hours" validate:"min=0,max=10000"`
	Minutes   int              `json:"minutes" validate:"min=0,max=59"`
	Period    Period           `json:"period"`
	Checklist []ChecklistGroup `json:"checklist" validate:"dive"`
}

type ChecklistToggle struct {
	Group     int  `json:"group" validate:"min=0"`
	Item      int  `json:"item" validate:"min=0"`
	Inspected bool `json:"inspected"`
}
