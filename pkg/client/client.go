// Package client owns the process wide connections shared by repositories.
package client

import (
	"context"
	"time"

	"vistoria/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Client struct {
	Mongo *mongo.Client
}

func NewClient() *Client {
	return &Client{}
}

// MongoOptions reads from the primary and acknowledges writes on the majority:
// the ledger and booking writes are sequenced without a transaction, so a
// secondary read could observe one without the other.
func MongoOptions(mongoURI, appName string, connTimeout time.Duration) *options.ClientOptions {
	return options.Client().
		ApplyURI(mongoURI).
		SetAppName(appName).
		SetConnectTimeout(connTimeout).
		SetServerSelectionTimeout(connTimeout).
		SetReadPreference(readpref.Primary()).
		SetRetryWrites(true)
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI, appName string, connTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), connTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, MongoOptions(mongoURI, appName, connTimeout))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Connected to MongoDB", "app_name", appName)
	c.Mongo = client
}

func (c *Client) GracefulShutdown(log *logger.Logger, timeout time.Duration) {
	if c.Mongo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := c.Mongo.Disconnect(ctx); err != nil {
		log.Error("Failed to disconnect from MongoDB", "error", err)
		return
	}
	log.Info("Disconnected from MongoDB")
}
