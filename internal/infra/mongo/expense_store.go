package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/miniledger/easyexp-go/internal/domain"
)

// expenseDoc maps the expense collection's columns to the domain type.
type expenseDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	UserID          string             `bson:"userId"`
	Amount          float64            `bson:"amount"`
	ReimburseType   string             `bson:"reimburseType"`
	ReimburseAmount *float64           `bson:"reimburseAmount,omitempty"`
	PayType         string             `bson:"payType"`
	Date            time.Time          `bson:"date"`
	Other           string             `bson:"other,omitempty"`
	CreateTime      time.Time          `bson:"createTime"`
}

func (d *expenseDoc) toDomain() *domain.Expense {
	return &domain.Expense{
		ID:              d.ID.Hex(),
		UserID:          d.UserID,
		Amount:          d.Amount,
		ReimburseType:   d.ReimburseType,
		ReimburseAmount: d.ReimburseAmount,
		PayType:         d.PayType,
		Date:            d.Date,
		Other:           d.Other,
		CreateTime:      d.CreateTime,
	}
}

// expenseQuery builds the scoped match document: always the owning user,
// plus the filter's inclusive date bounds and type equality constraints.
func expenseQuery(userID string, f domain.Filter) bson.M {
	q := bson.M{"userId": userID}

	date := bson.M{}
	if f.StartDate != nil {
		date["$gte"] = *f.StartDate
	}
	if f.EndDate != nil {
		date["$lte"] = *f.EndDate
	}
	if len(date) > 0 {
		q["date"] = date
	}

	if f.ReimburseType != "" {
		q["reimburseType"] = f.ReimburseType
	}
	if f.PayType != "" {
		q["payType"] = f.PayType
	}
	return q
}

var dateDescending = bson.D{{Key: "date", Value: -1}, {Key: "createTime", Value: -1}}

// List returns one page sorted by date descending plus the total matching
// count ignoring pagination.
func (c *Client) List(ctx context.Context, userID string, f domain.Filter) ([]domain.Expense, int64, error) {
	ctx, span := tracer.Start(ctx, "mongo.ListExpenses")
	defer span.End()
	span.SetAttributes(attribute.Int("page", f.Page), attribute.Int("limit", f.Limit))

	coll := c.db.Collection(expensesCollection)
	query := expenseQuery(userID, f)

	opts := options.Find().SetSort(dateDescending)
	if f.Limit > 0 {
		opts = opts.SetSkip(int64(f.Skip())).SetLimit(int64(f.Limit))
	}

	cur, err := coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find expenses: %w", err)
	}
	defer cur.Close(ctx)

	expenses, err := decodeExpenses(ctx, cur)
	if err != nil {
		return nil, 0, err
	}

	total, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count expenses: %w", err)
	}

	return expenses, total, nil
}

// ListAll returns every matching row sorted by date descending.
func (c *Client) ListAll(ctx context.Context, userID string, f domain.Filter) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "mongo.ListAllExpenses")
	defer span.End()

	cur, err := c.db.Collection(expensesCollection).Find(ctx,
		expenseQuery(userID, f.Unpaginated()),
		options.Find().SetSort(dateDescending),
	)
	if err != nil {
		return nil, fmt.Errorf("find expenses: %w", err)
	}
	defer cur.Close(ctx)

	return decodeExpenses(ctx, cur)
}

func decodeExpenses(ctx context.Context, cur *mongo.Cursor) ([]domain.Expense, error) {
	expenses := []domain.Expense{}
	for cur.Next(ctx) {
		var doc expenseDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode expense: %w", err)
		}
		expenses = append(expenses, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

// Create inserts a new record and returns its generated id.
func (c *Client) Create(ctx context.Context, e *domain.Expense) (string, error) {
	ctx, span := tracer.Start(ctx, "mongo.CreateExpense")
	defer span.End()

	doc := expenseDoc{
		UserID:          e.UserID,
		Amount:          e.Amount,
		ReimburseType:   e.ReimburseType,
		ReimburseAmount: e.ReimburseAmount,
		PayType:         e.PayType,
		Date:            e.Date,
		Other:           e.Other,
		CreateTime:      e.CreateTime,
	}

	res, err := c.db.Collection(expensesCollection).InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}

	id := res.InsertedID.(primitive.ObjectID).Hex()
	c.logger.Debug("expense created",
		zap.String("expense_id", id),
		zap.String("user_id", e.UserID),
	)
	return id, nil
}

// Get fetches one record matching both id and owner. A malformed id, a
// missing row and a foreign row all report the same not-found.
func (c *Client) Get(ctx context.Context, id, userID string) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "mongo.GetExpense")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: id}
	}

	var doc expenseDoc
	err = c.db.Collection(expensesCollection).
		FindOne(ctx, bson.M{"_id": oid, "userId": userID}).
		Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find expense: %w", err)
	}
	return doc.toDomain(), nil
}

// Update replaces the mutable fields wholesale. Optional fields absent from
// the input are unset on the document, not merged.
func (c *Client) Update(ctx context.Context, id, userID string, in *domain.Expense) error {
	ctx, span := tracer.Start(ctx, "mongo.UpdateExpense")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.ErrNotFound{Resource: "expense", ID: id}
	}

	set := bson.M{
		"amount":        in.Amount,
		"reimburseType": in.ReimburseType,
		"payType":       in.PayType,
		"date":          in.Date,
	}
	unset := bson.M{}

	if in.ReimburseAmount != nil {
		set["reimburseAmount"] = *in.ReimburseAmount
	} else {
		unset["reimburseAmount"] = ""
	}
	if in.Other != "" {
		set["other"] = in.Other
	} else {
		unset["other"] = ""
	}

	update := bson.M{"$set": set, "$unset": unset}

	res, err := c.db.Collection(expensesCollection).
		UpdateOne(ctx, bson.M{"_id": oid, "userId": userID}, update)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	// MatchedCount, not ModifiedCount: saving an unchanged form is fine.
	if res.MatchedCount == 0 {
		return &domain.ErrNotFound{Resource: "expense", ID: id}
	}
	return nil
}

// Delete removes one record matching both id and owner.
func (c *Client) Delete(ctx context.Context, id, userID string) error {
	ctx, span := tracer.Start(ctx, "mongo.DeleteExpense")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return &domain.ErrNotFound{Resource: "expense", ID: id}
	}

	res, err := c.db.Collection(expensesCollection).
		DeleteOne(ctx, bson.M{"_id": oid, "userId": userID})
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if res.DeletedCount == 0 {
		return &domain.ErrNotFound{Resource: "expense", ID: id}
	}
	return nil
}

// GroupByReimburseType sums amounts per reimbursement type.
func (c *Client) GroupByReimburseType(ctx context.Context, userID string, f domain.Filter) ([]domain.TypeStat, error) {
	ctx, span := tracer.Start(ctx, "mongo.GroupByReimburseType")
	defer span.End()

	return c.groupByField(ctx, "$reimburseType", userID, f)
}

// GroupByPayType sums amounts per payment type.
func (c *Client) GroupByPayType(ctx context.Context, userID string, f domain.Filter) ([]domain.TypeStat, error) {
	ctx, span := tracer.Start(ctx, "mongo.GroupByPayType")
	defer span.End()

	return c.groupByField(ctx, "$payType", userID, f)
}

func (c *Client) groupByField(ctx context.Context, field, userID string, f domain.Filter) ([]domain.TypeStat, error) {
	pipeline := []bson.M{
		{"$match": expenseQuery(userID, f)},
		{"$group": bson.M{
			"_id":   field,
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"total": -1}},
	}

	cur, err := c.db.Collection(expensesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate by %s: %w", field, err)
	}
	defer cur.Close(ctx)

	stats := []domain.TypeStat{}
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode %s stats: %w", field, err)
	}
	return stats, nil
}

// GroupByDate sums amounts per calendar day, ascending.
func (c *Client) GroupByDate(ctx context.Context, userID string, f domain.Filter) ([]domain.DateStat, error) {
	ctx, span := tracer.Start(ctx, "mongo.GroupByDate")
	defer span.End()

	pipeline := []bson.M{
		{"$match": expenseQuery(userID, f)},
		{"$project": bson.M{
			"amount": 1,
			"date": bson.M{"$dateToString": bson.M{
				"format": "%Y-%m-%d",
				"date":   "$date",
			}},
		}},
		{"$group": bson.M{
			"_id":   "$date",
			"total": bson.M{"$sum": "$amount"},
			"count": bson.M{"$sum": 1},
		}},
		{"$sort": bson.M{"_id": 1}},
	}

	cur, err := c.db.Collection(expensesCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate by date: %w", err)
	}
	defer cur.Close(ctx)

	stats := []domain.DateStat{}
	if err := cur.All(ctx, &stats); err != nil {
		return nil, fmt.Errorf("decode date stats: %w", err)
	}
	return stats, nil
}
