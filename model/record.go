package model

import (
	"reflect"
)

type (
	// WorkItem is the opaque payload of one unit of work, e.g. a cluster
	// count or a file name. It must not be mutated once submitted.
	WorkItem = any

	// JobID identifies a submitted job within its backend.
	JobID = string

	// BatchID identifies one fan-out of work items.
	BatchID = string
)

// ResultRecord is the set of named fields produced by a job,
// e.g. {count, score, labels}.
type ResultRecord map[string]any

// Well-known result fields of the cluster search.
const (
	FieldCount  = "count"
	FieldScore  = "score"
	FieldLabels = "labels"
)

// Equal reports whether two records hold the same observation, comparing
// every field by value.
func (r ResultRecord) Equal(other ResultRecord) bool {
	if len(r) != len(other) {
		return false
	}
	if len(r) == 0 {
		return true
	}
	return reflect.DeepEqual(map[string]any(r), map[string]any(other))
}

// Clone returns a shallow copy of the record.
func (r ResultRecord) Clone() ResultRecord {
	if r == nil {
		return nil
	}
	ret := make(ResultRecord, len(r))
	for k, v := range r {
		ret[k] = v
	}
	return ret
}

// Float returns the field as a float64 if it holds a number.
func (r ResultRecord) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Failure keeps the diagnostics of a job that did not succeed.
type Failure struct {
	// Index is the position of the job in its batch.
	Index  int    `json:"index"`
	JobID  JobID  `json:"job-id"`
	Reason string `json:"reason"`
}
