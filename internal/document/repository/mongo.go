package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/gogotex/docmanager/internal/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo implements the document store on a MongoDB collection. Documents
// are keyed by _id; generated identifiers come from a per-collection sequence
// document in the counters collection.
type MongoRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func NewMongoRepo(col, counters *mongo.Collection) *MongoRepo {
	return &MongoRepo{
		col:      col,
		counters: counters,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// bsonTime reduces t to what a BSON date can hold: UTC, millisecond precision.
func bsonTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

func (m *MongoRepo) nextID(ctx context.Context) (string, error) {
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := m.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": m.col.Name()},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return "", fmt.Errorf("mongo next id: %w", err)
	}
	return strconv.FormatInt(counter.Seq-1, 10), nil
}

func (m *MongoRepo) Save(ctx context.Context, doc document.Document) (document.Document, error) {
	if doc.ID == "" {
		id, err := m.nextID(ctx)
		if err != nil {
			return document.Document{}, err
		}
		doc.ID = id
		doc.CreatedAt = m.now()
	} else {
		existing, ok, err := m.FindByID(ctx, doc.ID)
		if err != nil {
			return document.Document{}, err
		}
		if ok {
			doc.CreatedAt = existing.CreatedAt
		}
	}
	// return exactly what FindByID will decode later
	doc.CreatedAt = bsonTime(doc.CreatedAt)
	opts := options.Replace().SetUpsert(true)
	if _, err := m.col.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, opts); err != nil {
		return document.Document{}, fmt.Errorf("mongo save %s: %w", doc.ID, err)
	}
	return doc, nil
}

func (m *MongoRepo) FindByID(ctx context.Context, id string) (document.Document, bool, error) {
	var d document.Document
	err := m.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return document.Document{}, false, nil
		}
		return document.Document{}, false, fmt.Errorf("mongo get %s: %w", id, err)
	}
	return d, true, nil
}

func (m *MongoRepo) Search(ctx context.Context, req document.SearchRequest) ([]document.Document, error) {
	cur, err := m.col.Find(ctx, SearchFilter(req))
	if err != nil {
		return nil, fmt.Errorf("mongo search: %w", err)
	}
	defer cur.Close(ctx)
	out := []document.Document{}
	for cur.Next(ctx) {
		var d document.Document
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, cur.Err()
}

// SearchFilter translates a SearchRequest into a Mongo query with the same
// semantics as document.Matches. Candidates are regex-quoted so they match
// literally.
func SearchFilter(req document.SearchRequest) bson.M {
	if req.IsEmpty() {
		return bson.M{}
	}
	var clauses []bson.M
	if len(req.TitlePrefixes) > 0 {
		clauses = append(clauses, anyRegex("title", "^", req.TitlePrefixes))
	}
	if len(req.ContainsContents) > 0 {
		clauses = append(clauses, anyRegex("content", "", req.ContainsContents))
	}
	if len(req.AuthorIDs) > 0 {
		clauses = append(clauses, bson.M{"author.id": bson.M{"$in": req.AuthorIDs}})
	}
	if req.CreatedFrom != nil || req.CreatedTo != nil {
		created := bson.M{}
		if req.CreatedFrom != nil {
			created["$gte"] = *req.CreatedFrom
		}
		if req.CreatedTo != nil {
			created["$lte"] = *req.CreatedTo
		}
		clauses = append(clauses, bson.M{"created": created})
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return bson.M{"$and": clauses}
}

func anyRegex(field, anchor string, candidates []string) bson.M {
	or := make([]bson.M, 0, len(candidates))
	for _, c := range candidates {
		or = append(or, bson.M{field: primitive.Regex{Pattern: anchor + regexp.QuoteMeta(c)}})
	}
	return bson.M{"$or": or}
}
