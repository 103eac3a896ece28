package repository

import (
	"testing"
	"time"
	_ "time/tzdata"

	"vistoria/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func marshal(t *testing.T, doc any) bson.Raw {
	t.Helper()
	raw, err := bson.Marshal(doc)
	require.NoError(t, err)
	return raw
}

func TestNormalize_Canonical(t *testing.T) {
	oid := primitive.NewObjectID()
	raw := marshal(t, bson.M{
		"_id":             oid,
		"nomeEquipamento": "Silo",
		"horaTotal":       "08:00:00",
		"horasRestantes":  "05:00:00",
		"periodo":         bson.M{"periodoValor": 2, "tipo": "semana"},
		"checkList": bson.A{
			bson.M{"servicos": bson.A{
				bson.M{"trabalho": "Limpeza", "vistoriado": true},
				bson.M{"trabalho": "Solda", "vistoriado": false},
			}},
		},
	})

	e, anomalies, err := Normalize(raw, time.UTC)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
	assert.Equal(t, oid.Hex(), e.ID)
	assert.Equal(t, "Silo", e.Name)
	assert.Equal(t, int64(28800), e.TotalDuration)
	assert.Equal(t, int64(18000), e.RemainingDuration)
	assert.Equal(t, model.Period{Value: 2, Unit: model.PeriodWeek}, e.Period)
	require.Len(t, e.Checklist, 1)
	assert.Equal(t, []model.ChecklistItem{{Label: "Limpeza", Inspected: true}, {Label: "Solda"}}, e.Checklist[0].Items)
}

func TestNormalize_LegacyShapes(t *testing.T) {
	legacy := time.Date(1970, time.January, 1, 8, 30, 15, 0, time.UTC)
	raw := marshal(t, bson.M{
		"_id":             primitive.NewObjectID(),
		"nomeEquipamento": "Correia",
		"horaTotal":       primitive.NewDateTimeFromTime(legacy),
		"horasRestantes":  "abc",
		"checkList": bson.A{
			bson.M{"servicos": bson.A{
				bson.A{
					bson.M{"trabalho": "A", "vistoriado": true},
					bson.M{"trabalho": "B", "vistoriado": true},
				},
			}},
		},
	})

	e, anomalies, err := Normalize(raw, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, int64(8*3600+30*60+15), e.TotalDuration)
	assert.Equal(t, int64(0), e.RemainingDuration)
	require.Len(t, e.Checklist, 1)
	assert.Len(t, e.Checklist[0].Items, 2)

	fields := map[string]bool{}
	for _, a := range anomalies {
		fields[a.Field] = true
	}
	assert.True(t, fields["horaTotal"])
	assert.True(t, fields["horasRestantes"])
	assert.True(t, fields["checkList"])
}

func TestNormalize_LegacyDatesReadInOperatingZone(t *testing.T) {
	saoPaulo, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	raw := marshal(t, bson.M{
		"_id":             primitive.NewObjectID(),
		"nomeEquipamento": "Caldeira",
		"horaTotal":       primitive.NewDateTimeFromTime(time.Date(1970, time.January, 1, 8, 0, 0, 0, saoPaulo)),
		"horasRestantes":  primitive.NewDateTimeFromTime(time.Date(1899, time.December, 31, 5, 0, 0, 0, saoPaulo)),
	})

	e, _, err := Normalize(raw, saoPaulo)
	require.NoError(t, err)
	assert.Equal(t, int64(28800), e.TotalDuration)
	assert.Equal(t, int64(18000), e.RemainingDuration)
	assert.LessOrEqual(t, e.RemainingDuration, e.TotalDuration)

	utc, _, err := Normalize(raw, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(11*3600), utc.TotalDuration, "nil zone reads the instant as UTC")
}

func TestNormalize_MissingID(t *testing.T) {
	_, _, err := Normalize(marshal(t, bson.M{"nomeEquipamento": "x"}), time.UTC)
	assert.Error(t, err)
}

func TestToDocument_EncodesDurations(t *testing.T) {
	doc := toDocument(&model.Equipment{Name: "Silo", TotalDuration: 28800, RemainingDuration: 3661})
	assert.Equal(t, "08:00:00", doc.Total)
	assert.Equal(t, "01:01:01", doc.Remaining)
	assert.NotNil(t, doc.Checklist)

	doc.ID = primitive.NewObjectID()
	e, anomalies, err := Normalize(marshal(t, doc), time.UTC)
	require.NoError(t, err)
	assert.Empty(t, anomalies)
	assert.Equal(t, int64(3661), e.RemainingDuration)
}
