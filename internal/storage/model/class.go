package model

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Class is one tracked class: a role, a channel category and the text
// and voice channels under it. The record store is the source of truth
// for "is this class tracked"; Discord owns the live state of the
// referenced objects.
type Class struct {
	ServerID      string   `bson:"server_id"`
	Name          string   `bson:"name"`
	ShortName     string   `bson:"short_name"`
	Role          string   `bson:"role"`
	Category      string   `bson:"category"`
	TextChannels  []string `bson:"text_channels"`
	VoiceChannels []string `bson:"voice_channels"`
}

// ShortName normalizes a class name for use in generated channel
// names: whitespace stripped, lower-cased.
func ShortName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// ListClasses returns all classes for a guild in store order; callers
// apply their own display ordering.
func ListClasses(ctx context.Context, c *mongo.Collection, guildID string) ([]*Class, error) {
	cur, err := c.Find(ctx,
		bson.D{{Key: "server_id", Value: guildID}},
		options.Find().SetHint(ServerIDHint),
	)
	if err != nil {
		return nil, err
	}
	var classes []*Class
	if err := cur.All(ctx, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// FindClassByName looks up a class by guild and name, matching the
// name case-insensitively. Returns nil if no class matched.
func FindClassByName(ctx context.Context, c *mongo.Collection, guildID, name string) (*Class, error) {
	cl := &Class{}
	err := c.FindOne(ctx,
		bson.D{{Key: "server_id", Value: guildID}, {Key: "name", Value: name}},
		options.FindOne().SetHint(ServerIDNameHint).SetCollation(caseInsensitive),
	).Decode(cl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cl, nil
}

// FindClassByRole returns the unique class backed by the given role,
// or nil if the role backs no class.
func FindClassByRole(ctx context.Context, c *mongo.Collection, roleID string) (*Class, error) {
	cl := &Class{}
	err := c.FindOne(ctx,
		bson.D{{Key: "role", Value: roleID}},
		options.FindOne().SetHint(RoleHint),
	).Decode(cl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return cl, nil
}

func InsertClass(ctx context.Context, c *mongo.Collection, cl *Class) error {
	_, err := c.InsertOne(ctx, cl)
	return err
}

// DeleteClassesByRole removes every class record bound to the role (by
// the role-uniqueness invariant, at most one) and reports how many
// documents were removed.
func DeleteClassesByRole(ctx context.Context, c *mongo.Collection, roleID string) (int64, error) {
	res, err := c.DeleteMany(ctx,
		bson.D{{Key: "role", Value: roleID}},
		options.Delete().SetHint(RoleHint),
	)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// IsDuplicateKey reports whether the store rejected an insert because a
// unique index already holds the key.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
