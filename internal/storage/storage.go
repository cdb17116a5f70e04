package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type Storage struct {
	ctx    context.Context
	logger *zap.Logger
	client *mongo.Client
	db     *mongo.Database
}

func NewStorage(ctx context.Context, l *zap.Logger) *Storage {
	return &Storage{ctx: ctx, logger: l}
}

func (s *Storage) Connect(uri, database string) error {
	var err error
	s.client, err = mongo.Connect(s.ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return err
	}
	s.db = s.client.Database(database)
	return s.ensureIndexes()
}

// Servers is the per-guild settings collection.
func (s *Storage) Servers() *mongo.Collection {
	return s.db.Collection("servers")
}

// Classes is the class records collection.
func (s *Storage) Classes() *mongo.Collection {
	return s.db.Collection("classes")
}

// ensureIndexes creates the named indexes every lookup hints at. The
// role and (server_id, name) indexes are unique so that two racing
// inserts for the same class cannot both persist.
func (s *Storage) ensureIndexes() error {
	if _, err := s.Servers().Indexes().CreateOne(s.ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "server_id", Value: 1}},
		Options: options.Index().SetName("server_id_1").SetUnique(true),
	}); err != nil {
		return fmt.Errorf("couldn't create servers indexes: %w", err)
	}

	if _, err := s.Classes().Indexes().CreateMany(s.ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "server_id", Value: 1}},
			Options: options.Index().SetName("server_id_1"),
		},
		{
			// Case-insensitive: class names must be unique per guild
			// regardless of casing.
			Keys: bson.D{{Key: "server_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetName("server_id_1_name_1").SetUnique(true).
				SetCollation(&options.Collation{Locale: "en", Strength: 2}),
		},
		{
			Keys:    bson.D{{Key: "role", Value: 1}},
			Options: options.Index().SetName("role_1").SetUnique(true),
		},
	}); err != nil {
		return fmt.Errorf("couldn't create classes indexes: %w", err)
	}

	return nil
}

func (s *Storage) Close() error {
	return s.client.Disconnect(s.ctx)
}
