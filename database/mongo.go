// Package database owns the MongoDB connection and seeding entrypoints.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shashiranjanraj/maalgodam/config"
)

// Connect dials MongoDB at the configured URI and verifies the
// connection with a ping.
func Connect(ctx context.Context) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.MongoURI()))
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return client, nil
}

// ItemsCollection returns the configured items collection handle.
func ItemsCollection(client *mongo.Client) *mongo.Collection {
	return client.Database(config.MongoDB()).Collection(config.MongoItemsCollection())
}
