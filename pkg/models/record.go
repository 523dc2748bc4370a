package models

import (
	"math"
	"strings"
	"time"
)

// PartialRecord is the sparse result of one source adapter call. A field the
// adapter did not retrieve is absent from the maps, never stored as zero.
type PartialRecord struct {
	Source    string            `json:"source"`
	FetchedAt time.Time         `json:"fetched_at"`
	Numbers   map[Field]float64 `json:"numbers"`
	Texts     map[Field]string  `json:"texts"`
}

// NewPartialRecord creates an empty record for the named source.
func NewPartialRecord(source string, fetchedAt time.Time) *PartialRecord {
	return &PartialRecord{
		Source:    source,
		FetchedAt: fetchedAt,
		Numbers:   make(map[Field]float64),
		Texts:     make(map[Field]string),
	}
}

// Set stores v for f. NaN and infinities are dropped.
func (r *PartialRecord) Set(f Field, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	r.Numbers[f] = v
}

// SetNonZero stores v only when it is non-zero. Many providers report a
// missing value as 0.
func (r *PartialRecord) SetNonZero(f Field, v float64) {
	if v == 0 {
		return
	}
	r.Set(f, v)
}

// SetPtr stores *v when v is non-nil.
func (r *PartialRecord) SetPtr(f Field, v *float64) {
	if v == nil {
		return
	}
	r.Set(f, *v)
}

// SetText stores a trimmed, non-empty string.
func (r *PartialRecord) SetText(f Field, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	r.Texts[f] = v
}

// Number returns the value of f and whether it is defined.
func (r *PartialRecord) Number(f Field) (float64, bool) {
	if r == nil {
		return 0, false
	}
	v, ok := r.Numbers[f]
	return v, ok
}

// Text returns the string value of f and whether it is defined.
func (r *PartialRecord) Text(f Field) (string, bool) {
	if r == nil {
		return "", false
	}
	v, ok := r.Texts[f]
	return v, ok
}

// Price returns the last traded price when it is defined and positive.
func (r *PartialRecord) Price() (float64, bool) {
	p, ok := r.Number(FieldPrice)
	if !ok || p <= 0 {
		return 0, false
	}
	return p, true
}

// Len returns the number of defined fields.
func (r *PartialRecord) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Numbers) + len(r.Texts)
}
