package model

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Index hint names, declared once and passed on every lookup. They must
// match the index names storage.Storage creates on connect.
const (
	ServerIDHint     = "server_id_1"
	ServerIDNameHint = "server_id_1_name_1"
	RoleHint         = "role_1"
)

// caseInsensitive matches the collation of the server_id_1_name_1 index.
var caseInsensitive = &options.Collation{Locale: "en", Strength: 2}

// Server holds per-guild settings. At most one record exists per guild;
// it is created lazily on first access and never deleted.
type Server struct {
	ServerID   string   `bson:"server_id"`
	AdminRoles []string `bson:"admin_roles"`
	Refrole    string   `bson:"refrole,omitempty"`
}

func NewServer(guildID string) *Server {
	return &Server{ServerID: guildID, AdminRoles: []string{}}
}

// FindServer returns the guild's Server record, or nil if none exists.
func FindServer(ctx context.Context, c *mongo.Collection, guildID string) (*Server, error) {
	s := &Server{}
	err := c.FindOne(ctx,
		bson.D{{Key: "server_id", Value: guildID}},
		options.FindOne().SetHint(ServerIDHint),
	).Decode(s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func InsertServer(ctx context.Context, c *mongo.Collection, s *Server) error {
	_, err := c.InsertOne(ctx, s)
	return err
}

// ReplaceServer swaps the whole record keyed by server_id, returning
// the prior document or nil if no record matched.
func ReplaceServer(ctx context.Context, c *mongo.Collection, s *Server) (*Server, error) {
	prior := &Server{}
	err := c.FindOneAndReplace(ctx,
		bson.D{{Key: "server_id", Value: s.ServerID}},
		s,
		options.FindOneAndReplace().SetHint(ServerIDHint),
	).Decode(prior)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return prior, nil
}
