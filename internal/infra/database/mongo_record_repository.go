package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"femflow/internal/domain/cycle"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Document field names, matching the bson tags on cycle.Record.
const (
	fieldPeriodStart          = "period_start"
	fieldDurationDays         = "duration_days"
	fieldHasAbnormalDischarge = "has_abnormal_discharge"
	fieldPainLevel            = "pain_level"
	fieldMood                 = "mood"
	fieldFlow                 = "flow"
	fieldNotes                = "notes"
	fieldNeedsAttention       = "needs_attention"
	fieldViewCount            = "view_count"
	fieldUpdatedAt            = "updated_at"
)

type MongoRecordRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMongoRecordRepository(coll *mongo.Collection) *MongoRecordRepository {
	return &MongoRecordRepository{coll: coll, now: time.Now}
}

// --- Seeding ---

func (r *MongoRecordRepository) BulkInsert(ctx context.Context, records []cycle.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	docs := make([]interface{}, len(records))
	for i := range records {
		docs[i] = records[i]
	}

	res, err := r.coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, storeErr("insert cycle records", err)
	}
	return len(res.InsertedIDs), nil
}

func (r *MongoRecordRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, storeErr("delete all cycle records", err)
	}
	return res.DeletedCount, nil
}

func (r *MongoRecordRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, storeErr("count cycle records", err)
	}
	return n, nil
}

func (r *MongoRecordRepository) FindOne(ctx context.Context) (*cycle.Record, error) {
	var rec cycle.Record
	if err := r.coll.FindOne(ctx, bson.D{}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrRecordNotFound
		}
		return nil, storeErr("find one cycle record", err)
	}
	return &rec, nil
}

// --- Find and filters ---

func (r *MongoRecordRepository) ListAll(ctx context.Context) ([]cycle.Record, error) {
	return r.find(ctx, "list all", bson.D{})
}

func (r *MongoRecordRepository) ListLimited(ctx context.Context, limit int64) ([]cycle.Record, error) {
	return r.find(ctx, "list limited", bson.D{}, options.Find().SetLimit(limit))
}

func (r *MongoRecordRepository) ListWithAbnormalDischarge(ctx context.Context) ([]cycle.Record, error) {
	return r.find(ctx, "list abnormal discharge", bson.D{{Key: fieldHasAbnormalDischarge, Value: true}})
}

func (r *MongoRecordRepository) ListByMinDuration(ctx context.Context, minDays int) ([]cycle.Record, error) {
	filter := bson.D{{Key: fieldDurationDays, Value: bson.D{{Key: "$gte", Value: minDays}}}}
	return r.find(ctx, "list by duration", filter)
}

func (r *MongoRecordRepository) ListByMinDurationAndPain(ctx context.Context, minDays, minPain int) ([]cycle.Record, error) {
	filter := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: fieldDurationDays, Value: bson.D{{Key: "$gte", Value: minDays}}}},
		bson.D{{Key: fieldPainLevel, Value: bson.D{{Key: "$gte", Value: minPain}}}},
	}}}
	return r.find(ctx, "list by duration and pain", filter)
}

func (r *MongoRecordRepository) ListByMoods(ctx context.Context, moods ...cycle.Mood) ([]cycle.Record, error) {
	values := make(bson.A, len(moods))
	for i, m := range moods {
		values[i] = string(m)
	}
	filter := bson.D{{Key: fieldMood, Value: bson.D{{Key: "$in", Value: values}}}}
	return r.find(ctx, "list by moods", filter)
}

func (r *MongoRecordRepository) ListWithNotes(ctx context.Context) ([]cycle.Record, error) {
	filter := bson.D{{Key: fieldNotes, Value: bson.D{
		{Key: "$exists", Value: true},
		{Key: "$ne", Value: nil},
	}}}
	return r.find(ctx, "list with notes", filter)
}

func (r *MongoRecordRepository) CountByAbnormalDischarge(ctx context.Context, abnormal bool) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: fieldHasAbnormalDischarge, Value: abnormal}})
	if err != nil {
		return 0, storeErr("count by abnormal discharge", err)
	}
	return n, nil
}

// --- Sort and projection ---

func (r *MongoRecordRepository) ListMostRecent(ctx context.Context, limit int64) ([]cycle.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: fieldPeriodStart, Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, "list most recent", bson.D{}, opts)
}

func (r *MongoRecordRepository) ListLongestAndMostPainful(ctx context.Context, limit int64) ([]cycle.Record, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: fieldDurationDays, Value: -1}, {Key: fieldPainLevel, Value: -1}}).
		SetLimit(limit)
	return r.find(ctx, "list longest and most painful", bson.D{}, opts)
}

func (r *MongoRecordRepository) ListSummaries(ctx context.Context, limit int64) ([]cycle.Summary, error) {
	opts := options.Find().
		SetProjection(bson.D{
			{Key: fieldPeriodStart, Value: 1},
			{Key: fieldDurationDays, Value: 1},
			{Key: fieldHasAbnormalDischarge, Value: 1},
			{Key: "_id", Value: 0},
		}).
		SetLimit(limit)

	cur, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, storeErr("list summaries", err)
	}
	summaries := make([]cycle.Summary, 0)
	if err := cur.All(ctx, &summaries); err != nil {
		return nil, storeErr("decode summaries", err)
	}
	return summaries, nil
}

// --- Aggregation ---

func (r *MongoRecordRepository) DurationStats(ctx context.Context) (*cycle.DurationStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_duration", Value: bson.D{{Key: "$avg", Value: "$" + fieldDurationDays}}},
			{Key: "max_duration", Value: bson.D{{Key: "$max", Value: "$" + fieldDurationDays}}},
			{Key: "min_duration", Value: bson.D{{Key: "$min", Value: "$" + fieldDurationDays}}},
		}}},
	}

	var results []cycle.DurationStats
	if err := r.aggregate(ctx, "duration stats", pipeline, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		// no documents, no group
		return &cycle.DurationStats{}, nil
	}
	return &results[0], nil
}

func (r *MongoRecordRepository) FlowBreakdown(ctx context.Context) ([]cycle.FlowStat, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + fieldFlow},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avg_duration", Value: bson.D{{Key: "$avg", Value: "$" + fieldDurationDays}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}}}},
	}

	stats := make([]cycle.FlowStat, 0)
	if err := r.aggregate(ctx, "flow breakdown", pipeline, &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *MongoRecordRepository) PainDistribution(ctx context.Context) ([]cycle.PainBucket, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$" + fieldPainLevel},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	buckets := make([]cycle.PainBucket, 0)
	if err := r.aggregate(ctx, "pain distribution", pipeline, &buckets); err != nil {
		return nil, err
	}
	return buckets, nil
}

// --- Updates ---

func (r *MongoRecordRepository) AnnotateFirstAbnormal(ctx context.Context, note string) (int64, error) {
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldNotes, Value: note},
		{Key: fieldUpdatedAt, Value: r.now().UTC()},
	}}}
	res, err := r.coll.UpdateOne(ctx, bson.D{{Key: fieldHasAbnormalDischarge, Value: true}}, update)
	if err != nil {
		return 0, storeErr("annotate abnormal record", err)
	}
	return res.ModifiedCount, nil
}

func (r *MongoRecordRepository) FlagNeedsAttention(ctx context.Context, minPain int) (int64, error) {
	filter := bson.D{{Key: fieldPainLevel, Value: bson.D{{Key: "$gte", Value: minPain}}}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: fieldNeedsAttention, Value: true},
		{Key: fieldUpdatedAt, Value: r.now().UTC()},
	}}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, storeErr("flag records needing attention", err)
	}
	return res.ModifiedCount, nil
}

// IncrementViewCount creates view_count on records that lack it.
func (r *MongoRecordRepository) IncrementViewCount(ctx context.Context) (int64, error) {
	update := bson.D{{Key: "$inc", Value: bson.D{{Key: fieldViewCount, Value: 1}}}}
	res, err := r.coll.UpdateMany(ctx, bson.D{}, update)
	if err != nil {
		return 0, storeErr("increment view count", err)
	}
	return res.ModifiedCount, nil
}

// --- Indexes ---

func (r *MongoRecordRepository) EnsureIndexes(ctx context.Context) ([]string, error) {
	models := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldPeriodStart, Value: 1}}},
		{Keys: bson.D{{Key: fieldDurationDays, Value: 1}, {Key: fieldPainLevel, Value: -1}}},
	}
	names, err := r.coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return nil, storeErr("create indexes", err)
	}
	return names, nil
}

func (r *MongoRecordRepository) ListIndexes(ctx context.Context) ([]cycle.IndexInfo, error) {
	cur, err := r.coll.Indexes().List(ctx)
	if err != nil {
		return nil, storeErr("list indexes", err)
	}

	var specs []struct {
		Name string `bson:"name"`
		Key  bson.D `bson:"key"`
	}
	if err := cur.All(ctx, &specs); err != nil {
		return nil, storeErr("decode indexes", err)
	}

	indexes := make([]cycle.IndexInfo, 0, len(specs))
	for _, spec := range specs {
		info := cycle.IndexInfo{Name: spec.Name}
		for _, e := range spec.Key {
			info.Keys = append(info.Keys, cycle.IndexKey{Field: e.Key, Direction: direction(e.Value)})
		}
		indexes = append(indexes, info)
	}
	return indexes, nil
}

func (r *MongoRecordRepository) find(ctx context.Context, op string, filter interface{}, opts ...*options.FindOptions) ([]cycle.Record, error) {
	cur, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, storeErr(op, err)
	}
	records := make([]cycle.Record, 0)
	if err := cur.All(ctx, &records); err != nil {
		return nil, storeErr(op+": decode", err)
	}
	return records, nil
}

func (r *MongoRecordRepository) aggregate(ctx context.Context, op string, pipeline mongo.Pipeline, out interface{}) error {
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return storeErr(op, err)
	}
	if err := cur.All(ctx, out); err != nil {
		return storeErr(op+": decode", err)
	}
	return nil
}

// direction normalizes the numeric types the server may use for key order.
func direction(v interface{}) int {
	switch d := v.(type) {
	case int32:
		return int(d)
	case int64:
		return int(d)
	case float64:
		return int(d)
	default:
		return 0
	}
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreOperation, op, err)
}
