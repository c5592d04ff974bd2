package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/miniledger/easyexp-go/internal/domain"
)

// configDoc is one vocabulary document: one per (user, kind) pair.
type configDoc struct {
	UserID     string    `bson:"userId"`
	Type       string    `bson:"type"`
	Options    []string  `bson:"options"`
	UpdateTime time.Time `bson:"updateTime"`
}

// GetOptions reads one vocabulary. found=false means the user has never
// stored that kind; the caller falls back to the seed list.
func (c *Client) GetOptions(ctx context.Context, userID string, kind domain.VocabKind) ([]string, bool, error) {
	ctx, span := tracer.Start(ctx, "mongo.GetOptions")
	defer span.End()

	var doc configDoc
	err := c.db.Collection(configsCollection).
		FindOne(ctx, bson.M{"userId": userID, "type": string(kind)}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find config: %w", err)
	}
	return doc.Options, true, nil
}

// SetOptions replaces the full list for one kind, upserting the document.
func (c *Client) SetOptions(ctx context.Context, userID string, kind domain.VocabKind, opts []string) error {
	ctx, span := tracer.Start(ctx, "mongo.SetOptions")
	defer span.End()

	_, err := c.db.Collection(configsCollection).UpdateOne(ctx,
		bson.M{"userId": userID, "type": string(kind)},
		bson.M{"$set": bson.M{"options": opts, "updateTime": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert config: %w", err)
	}
	return nil
}
