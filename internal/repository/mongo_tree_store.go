package repository

import (
	"context"
	"fmt"
	"regexp"

	"contenthub/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	categoryCollection = "categories"
	contentCollection  = "contents"
)

type mongoTreeStore struct {
	client       *mongo.Client
	transactions bool
	categories   *mongoCategoryRepository
	contents     *mongoContentRepository
}

// NewMongoTreeStore returns a TreeStore over db. Set transactions only when
// the deployment is a replica set; otherwise Transaction is a plain call.
func NewMongoTreeStore(client *mongo.Client, db *mongo.Database, transactions bool) TreeStore {
	return &mongoTreeStore{
		client:       client,
		transactions: transactions,
		categories:   &mongoCategoryRepository{collection: db.Collection(categoryCollection)},
		contents:     &mongoContentRepository{collection: db.Collection(contentCollection)},
	}
}

// EnsureMongoIndexes creates the sibling-uniqueness and lookup indexes.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(categoryCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "parentId", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_category_parent_name"),
		},
	})
	if err != nil {
		return fmt.Errorf("create category indexes: %w", err)
	}
	_, err = db.Collection(contentCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "categoryId", Value: 1}, {Key: "name", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create content indexes: %w", err)
	}
	return nil
}

func (s *mongoTreeStore) Categories() CategoryRepository { return s.categories }
func (s *mongoTreeStore) Contents() ContentRepository    { return s.contents }
func (s *mongoTreeStore) SupportsTransactions() bool     { return s.transactions }

func (s *mongoTreeStore) Transaction(ctx context.Context, fn func(ctx context.Context, tx TreeStore) error) error {
	if !s.transactions {
		return fn(ctx, s)
	}
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start mongo session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, s)
	})
	return err
}

// containsRegex is an escaped, case-insensitive substring match.
func containsRegex(text string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(text), Options: "i"}
}

func findOptions(skip, limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	if skip > 0 {
		opts.SetSkip(int64(skip))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}

type mongoCategoryRepository struct {
	collection *mongo.Collection
}

func (r *mongoCategoryRepository) findOne(ctx context.Context, filter bson.M) (*model.Category, error) {
	var category model.Category
	if err := r.collection.FindOne(ctx, filter).Decode(&category); err != nil {
		return nil, translateMongoError(err)
	}
	return &category, nil
}

func (r *mongoCategoryRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Category, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cursor.Close(ctx)

	categories := []model.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *mongoCategoryRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoCategoryRepository) FindByParentAndName(ctx context.Context, parentID *string, name string) (*model.Category, error) {
	return r.findOne(ctx, bson.M{"parentId": parentID, "name": name})
}

func (r *mongoCategoryRepository) FindByParent(ctx context.Context, parentID *string, enabledOnly bool) ([]model.Category, error) {
	filter := bson.M{"parentId": parentID}
	if enabledOnly {
		filter["enabled"] = true
	}
	return r.find(ctx, filter, findOptions(0, 0))
}

func (r *mongoCategoryRepository) FindAll(ctx context.Context, enabledOnly bool) ([]model.Category, error) {
	filter := bson.M{}
	if enabledOnly {
		filter["enabled"] = true
	}
	return r.find(ctx, filter, findOptions(0, 0))
}

func (r *mongoCategoryRepository) ExistingIDs(ctx context.Context, ids []string) ([]string, error) {
	existing := make([]string, 0, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}
	categories, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		existing = append(existing, c.ID)
	}
	return existing, nil
}

func (r *mongoCategoryRepository) Search(ctx context.Context, q TextQuery) ([]model.Category, error) {
	re := containsRegex(q.Text)
	filter := bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"keywords": re},
	}}
	if q.EnabledOnly {
		filter["enabled"] = true
	}
	return r.find(ctx, filter, findOptions(q.Skip, q.Limit))
}

func (r *mongoCategoryRepository) Create(ctx context.Context, category *model.Category) error {
	_, err := r.collection.InsertOne(ctx, category)
	return translateMongoError(err)
}

func (r *mongoCategoryRepository) Update(ctx context.Context, category *model.Category) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": category.ID}, category)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoCategoryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoContentRepository struct {
	collection *mongo.Collection
}

func (r *mongoContentRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]model.Content, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, translateMongoError(err)
	}
	defer cursor.Close(ctx)

	contents := []model.Content{}
	if err := cursor.All(ctx, &contents); err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *mongoContentRepository) FindByID(ctx context.Context, id string) (*model.Content, error) {
	var content model.Content
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&content); err != nil {
		return nil, translateMongoError(err)
	}
	return &content, nil
}

func (r *mongoContentRepository) FindByCategoryAndName(ctx context.Context, categoryID *string, name string) (*model.Content, error) {
	var content model.Content
	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	err := r.collection.FindOne(ctx, bson.M{"categoryId": categoryID, "name": name}, opts).Decode(&content)
	if err != nil {
		return nil, translateMongoError(err)
	}
	return &content, nil
}

func (r *mongoContentRepository) FindByCategory(ctx context.Context, categoryID *string, enabledOnly bool) ([]model.Content, error) {
	filter := bson.M{"categoryId": categoryID}
	if enabledOnly {
		filter["enabled"] = true
	}
	return r.find(ctx, filter, findOptions(0, 0))
}

func (r *mongoContentRepository) DistinctCategoryIDs(ctx context.Context) ([]string, error) {
	values, err := r.collection.Distinct(ctx, "categoryId", bson.M{"categoryId": bson.M{"$ne": nil}})
	if err != nil {
		return nil, translateMongoError(err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		if id, ok := v.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *mongoContentRepository) Search(ctx context.Context, q TextQuery) ([]model.Content, error) {
	re := containsRegex(q.Text)
	filter := bson.M{"$or": bson.A{
		bson.M{"name": re},
		bson.M{"keywords": re},
		bson.M{"description": re},
	}}
	if q.EnabledOnly {
		filter["enabled"] = true
	}
	return r.find(ctx, filter, findOptions(q.Skip, q.Limit))
}

func (r *mongoContentRepository) Create(ctx context.Context, content *model.Content) error {
	_, err := r.collection.InsertOne(ctx, content)
	return translateMongoError(err)
}

func (r *mongoContentRepository) Update(ctx context.Context, content *model.Content) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": content.ID}, content)
	if err != nil {
		return translateMongoError(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoContentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateMongoError(err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoContentRepository) DeleteByCategory(ctx context.Context, categoryID string) ([]string, error) {
	filter := bson.M{"categoryId": categoryID}
	owned, err := r.find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(owned))
	for _, c := range owned {
		ids = append(ids, c.ID)
	}
	if len(ids) == 0 {
		return ids, nil
	}
	if _, err := r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return nil, translateMongoError(err)
	}
	return ids, nil
}
