package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
)

// userDoc maps the user collection's columns to the domain type.
type userDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Username   string             `bson:"username"`
	Password   string             `bson:"password"`
	Email      string             `bson:"email,omitempty"`
	CreateTime time.Time          `bson:"createTime"`
	UpdateTime time.Time          `bson:"updateTime"`
}

func (d *userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:           d.ID.Hex(),
		Username:     d.Username,
		PasswordHash: d.Password,
		Email:        d.Email,
		CreateTime:   d.CreateTime,
		UpdateTime:   d.UpdateTime,
	}
}

// CreateUser inserts a new account and returns its generated id. A taken
// username surfaces as a conflict.
func (c *Client) CreateUser(ctx context.Context, user *domain.User) (string, error) {
	ctx, span := tracer.Start(ctx, "mongo.CreateUser")
	defer span.End()

	doc := userDoc{
		Username:   user.Username,
		Password:   user.PasswordHash,
		Email:      user.Email,
		CreateTime: user.CreateTime,
		UpdateTime: user.UpdateTime,
	}

	res, err := c.db.Collection(usersCollection).InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", &domain.ErrConflict{Message: "用户名已存在"}
		}
		return "", fmt.Errorf("insert user: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID).Hex()
	c.logger.Debug("user created", zap.String("user_id", id))
	return id, nil
}

// GetUserByUsername returns nil without error when no such user exists, so
// the auth service can answer "invalid credentials" without leaking which
// half was wrong.
func (c *Client) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "mongo.GetUserByUsername")
	defer span.End()

	var doc userDoc
	err := c.db.Collection(usersCollection).FindOne(ctx, bson.M{"username": username}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by username: %w", err)
	}
	return doc.toDomain(), nil
}

// GetUserByID resolves a user by its hex id.
func (c *Client) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, span := tracer.Start(ctx, "mongo.GetUserByID")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}

	var doc userDoc
	err = c.db.Collection(usersCollection).FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &domain.ErrNotFound{Resource: "user", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return doc.toDomain(), nil
}

// UpdatePassword replaces the stored password hash.
func (c *Client) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctx, span := tracer.Start(ctx, "mongo.UpdatePassword")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}

	res, err := c.db.Collection(usersCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"password": passwordHash, "updateTime": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.ErrNotFound{Resource: "user", ID: id}
	}
	return nil
}
