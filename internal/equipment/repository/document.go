package repository

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"vistoria/pkg/duration"
	"vistoria/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	fieldName      = "nomeEquipamento"
	fieldTotal     = "horaTotal"
	fieldRemaining = "horasRestantes"
	fieldPeriod    = "periodo"
	fieldChecklist = "checkList"
	fieldItems     = "servicos"
)

// equipmentDocument is the canonical stored shape of an equipamentos record.
type equipmentDocument struct {
	ID        primitive.ObjectID     `bson:"_id,omitempty"`
	Name      string                 `bson:"nomeEquipamento"`
	Total     string                 `bson:"horaTotal"`
	Remaining string                 `bson:"horasRestantes"`
	Period    model.Period           `bson:"periodo"`
	Checklist []model.ChecklistGroup `bson:"checkList"`
}

func toDocument(e *model.Equipment) equipmentDocument {
	checklist := e.Checklist
	if checklist == nil {
		checklist = []model.ChecklistGroup{}
	}
	for i := range checklist {
		if checklist[i].Items == nil {
			checklist[i].Items = []model.ChecklistItem{}
		}
	}
	return equipmentDocument{
		Name:      e.Name,
		Total:     duration.Encode(e.TotalDuration),
		Remaining: duration.Encode(e.RemainingDuration),
		Period:    e.Period,
		Checklist: checklist,
	}
}

// Anomaly describes one field that was not in canonical shape when read.
type Anomaly struct {
	Field  string
	Reason string
}

func (a Anomaly) String() string {
	return a.Field + ": " + a.Reason
}

// Normalize reads a stored equipment document of any known vintage. Legacy
// date durations are read as the time of day in loc, the zone they were
// written in; a nil loc means UTC. Servicos nested one level too deep is
// flattened and unreadable durations become zero. Each deviation is reported
// so callers can log it or rewrite the document.
func Normalize(raw bson.Raw, loc *time.Location) (*model.Equipment, []Anomaly, error) {
	if loc == nil {
		loc = time.UTC
	}

	if err := raw.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid equipment document: %w", err)
	}

	var anomalies []Anomaly
	e := &model.Equipment{}

	switch id := raw.Lookup("_id"); id.Type {
	case bson.TypeObjectID:
		e.ID = id.ObjectID().Hex()
	case bson.TypeString:
		e.ID = id.StringValue()
	default:
		return nil, nil, fmt.Errorf("equipment document has no usable _id")
	}

	if name, ok := raw.Lookup(fieldName).StringValueOK(); ok {
		e.Name = name
	} else {
		anomalies = append(anomalies, Anomaly{Field: fieldName, Reason: "missing"})
	}

	var a *Anomaly
	e.TotalDuration, a = readDuration(fieldTotal, raw.Lookup(fieldTotal), loc)
	if a != nil {
		anomalies = append(anomalies, *a)
	}
	e.RemainingDuration, a = readDuration(fieldRemaining, raw.Lookup(fieldRemaining), loc)
	if a != nil {
		anomalies = append(anomalies, *a)
	}

	if period, ok := raw.Lookup(fieldPeriod).DocumentOK(); ok {
		e.Period = readPeriod(period)
	}

	checklist, flattened := readChecklist(raw.Lookup(fieldChecklist))
	e.Checklist = checklist
	if flattened {
		anomalies = append(anomalies, Anomaly{Field: fieldChecklist, Reason: "nested servicos flattened"})
	}

	return e, anomalies, nil
}

func readDuration(field string, v bson.RawValue, loc *time.Location) (int64, *Anomaly) {
	switch v.Type {
	case bson.TypeString:
		text := v.StringValue()
		seconds, err := duration.Decode(text)
		if err != nil {
			return 0, &Anomaly{Field: field, Reason: fmt.Sprintf("malformed duration %q read as zero", text)}
		}
		return seconds, nil
	case bson.TypeDateTime:
		t := v.Time().In(loc)
		return int64(t.Hour())*duration.SecondsPerHour + int64(t.Minute())*duration.SecondsPerMinute + int64(t.Second()),
			&Anomaly{Field: field, Reason: "legacy date read as time of day"}
	case bson.TypeInt32:
		return int64(v.Int32()), &Anomaly{Field: field, Reason: "numeric seconds"}
	case bson.TypeInt64:
		return v.Int64(), &Anomaly{Field: field, Reason: "numeric seconds"}
	case bson.TypeDouble:
		return int64(math.Round(v.Double())), &Anomaly{Field: field, Reason: "numeric seconds"}
	default:
		return 0, &Anomaly{Field: field, Reason: "missing duration read as zero"}
	}
}

func readPeriod(doc bson.Raw) model.Period {
	p := model.Period{}
	switch v := doc.Lookup("periodoValor"); v.Type {
	case bson.TypeInt32:
		p.Value = int(v.Int32())
	case bson.TypeInt64:
		p.Value = int(v.Int64())
	case bson.TypeDouble:
		p.Value = int(v.Double())
	case bson.TypeString:
		p.Value, _ = strconv.Atoi(v.StringValue())
	}
	if unit, ok := doc.Lookup("tipo").StringValueOK(); ok {
		p.Unit = model.PeriodUnit(unit)
	}
	return p
}

func readChecklist(v bson.RawValue) ([]model.ChecklistGroup, bool) {
	groups := []model.ChecklistGroup{}
	arr, ok := v.ArrayOK()
	if !ok {
		return groups, false
	}
	values, err := arr.Values()
	if err != nil {
		return groups, false
	}

	flattened := false
	for _, gv := range values {
		doc, ok := gv.DocumentOK()
		if !ok {
			continue
		}
		items, nested := readItems(doc.Lookup(fieldItems))
		flattened = flattened || nested
		groups = append(groups, model.ChecklistGroup{Items: items})
	}
	return groups, flattened
}

func readItems(v bson.RawValue) ([]model.ChecklistItem, bool) {
	items := []model.ChecklistItem{}
	arr, ok := v.ArrayOK()
	if !ok {
		return items, false
	}
	values, err := arr.Values()
	if err != nil {
		return items, false
	}

	nested := false
	for _, iv := range values {
		switch iv.Type {
		case bson.TypeEmbeddedDocument:
			items = append(items, readItem(iv.Document()))
		case bson.TypeArray:
			nested = true
			inner, _ := readItems(iv)
			items = append(items, inner...)
		}
	}
	return items, nested
}

func readItem(doc bson.Raw) model.ChecklistItem {
	item := model.ChecklistItem{}
	item.Label, _ = doc.Lookup("trabalho").StringValueOK()
	item.Inspected, _ = doc.Lookup("vistoriado").BooleanOK()
	return item
}
