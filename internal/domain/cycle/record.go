// internal/domain/cycle/record.go
package cycle

import "time"

// Mood is the self-reported emotional state during a period.
type Mood string

const (
	MoodNormal        Mood = "normal"
	MoodMildlyAnxious Mood = "mildly anxious"
	MoodLow           Mood = "low"
	MoodIrritable     Mood = "irritable"
	MoodStable        Mood = "stable"
)

// Moods lists every mood label in a stable order.
var Moods = []Mood{MoodNormal, MoodMildlyAnxious, MoodLow, MoodIrritable, MoodStable}

// Flow is the bleeding intensity of a period.
type Flow string

const (
	FlowLight  Flow = "light"
	FlowMedium Flow = "medium"
	FlowHeavy  Flow = "heavy"
)

// Flows lists every flow level from lightest to heaviest.
var Flows = []Flow{FlowLight, FlowMedium, FlowHeavy}

const (
	MinDurationDays    = 3
	MaxDurationDays    = 7
	MinCycleLengthDays = 21
	MaxCycleLengthDays = 35
	MinPainLevel       = 0
	MaxPainLevel       = 5
)

// Record summarizes one menstrual cycle.
// Corresponds to one document in the menstrual_records collection.
type Record struct {
	PeriodStart     time.Time `bson:"period_start" json:"period_start" yaml:"period_start"`
	PeriodEnd       time.Time `bson:"period_end" json:"period_end" yaml:"period_end"`
	DurationDays    int       `bson:"duration_days" json:"duration_days" yaml:"duration_days"`
	CycleLengthDays int       `bson:"cycle_length_days" json:"cycle_length_days" yaml:"cycle_length_days"`

	HasAbnormalDischarge         bool    `bson:"has_abnormal_discharge" json:"has_abnormal_discharge" yaml:"has_abnormal_discharge"`
	AbnormalDischargeDescription *string `bson:"abnormal_discharge_description" json:"abnormal_discharge_description" yaml:"abnormal_discharge_description"`

	// Previous cycle, sampled on its own rather than copied from the record before.
	LastPeriodStart     time.Time `bson:"last_period_start" json:"last_period_start" yaml:"last_period_start"`
	LastPeriodEnd       time.Time `bson:"last_period_end" json:"last_period_end" yaml:"last_period_end"`
	LastDurationDays    int       `bson:"last_duration_days" json:"last_duration_days" yaml:"last_duration_days"`
	LastCycleLengthDays int       `bson:"last_cycle_length_days" json:"last_cycle_length_days" yaml:"last_cycle_length_days"`

	PainLevel int     `bson:"pain_level" json:"pain_level" yaml:"pain_level"` // 0 = none, 5 = severe
	Mood      Mood    `bson:"mood" json:"mood" yaml:"mood"`
	Flow      Flow    `bson:"flow" json:"flow" yaml:"flow"`
	Notes     *string `bson:"notes" json:"notes" yaml:"notes"`

	// Set only by the update queries.
	NeedsAttention bool `bson:"needs_attention,omitempty" json:"needs_attention,omitempty" yaml:"needs_attention,omitempty"`
	ViewCount      int  `bson:"view_count,omitempty" json:"view_count,omitempty" yaml:"view_count,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" yaml:"updated_at"`
}

// Summary is the projected view of a record returned by ListSummaries.
type Summary struct {
	PeriodStart          time.Time `bson:"period_start"`
	DurationDays         int       `bson:"duration_days"`
	HasAbnormalDischarge bool      `bson:"has_abnormal_discharge"`
}
