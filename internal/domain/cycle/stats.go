// internal/domain/cycle/stats.go
package cycle

// DurationStats aggregates duration_days over the whole collection.
type DurationStats struct {
	Count       int64   `bson:"count"`
	AvgDuration float64 `bson:"avg_duration"`
	MaxDuration int     `bson:"max_duration"`
	MinDuration int     `bson:"min_duration"`
}

// FlowStat is one group of the per-flow breakdown.
type FlowStat struct {
	Flow        Flow    `bson:"_id"`
	Count       int64   `bson:"count"`
	AvgDuration float64 `bson:"avg_duration"`
}

// PainBucket counts the records sharing one pain level.
type PainBucket struct {
	Level int   `bson:"_id"`
	Count int64 `bson:"count"`
}

// IndexKey is one field of an index, Direction is 1 or -1.
type IndexKey struct {
	Field     string
	Direction int
}

// IndexInfo describes an index present on the collection.
type IndexInfo struct {
	Name string
	Keys []IndexKey
}
