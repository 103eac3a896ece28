package validators

import "go.mongodb.org/mongo-driver/bson"

// DurationPattern matches the HH:MM:SS text form; hours may exceed 99.
const DurationPattern = `^[0-9]{2,}:[0-5][0-9]:[0-5][0-9]$`

var EquipmentValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"nomeEquipamento",
			"horaTotal",
			"horasRestantes",
			"checkList",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"nomeEquipamento": bson.M{
				"bsonType":  "string",
				"minLength": 2,
				"maxLength": 100,
			},

			"horaTotal": bson.M{
				"bsonType": "string",
				"pattern":  DurationPattern,
			},

			"horasRestantes": bson.M{
				"bsonType": "string",
				"pattern":  DurationPattern,
			},

			"periodo": bson.M{
				"bsonType": "object",
				"properties": bson.M{
					"periodoValor": bson.M{
						"bsonType": []string{"int", "long"},
						"minimum":  1,
					},
					"tipo": bson.M{
						"bsonType": "string",
						"enum":     []string{"dia", "semana", "mes"},
					},
				},
			},

			"checkList": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"servicos"},
					"properties": bson.M{
						"servicos": bson.M{
							"bsonType": "array",
							"items": bson.M{
								"bsonType": "object",
								"required": []string{"trabalho", "vistoriado"},
								"properties": bson.M{
									"trabalho":   bson.M{"bsonType": "string", "minLength": 1},
									"vistoriado": bson.M{"bsonType": "bool"},
								},
							},
						},
					},
				},
			},
		},
	},
}
