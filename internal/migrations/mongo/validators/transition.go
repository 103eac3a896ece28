package validators

import "go.mongodb.org/mongo-driver/bson"

var TransitionValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"kind",
			"equipmentId",
			"previousRemaining",
			"nextRemaining",
			"status",
			"createdAt",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 36,
				"maxLength": 36,
			},

			"kind": bson.M{
				"bsonType": "string",
				"enum":     []string{"schedule", "move", "cancel"},
			},

			"equipmentId": bson.M{
				"bsonType": "string",
			},

			"previousRemaining": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"nextRemaining": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum":     []string{"pending", "resolved", "aborted", "stranded"},
			},

			"createdAt": bson.M{
				"bsonType": "date",
			},

			"resolvedAt": bson.M{
				"bsonType": "date",
			},
		},
	},
}
