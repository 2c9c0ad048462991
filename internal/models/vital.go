package models

import "time"

// VitalSample is one heart-rate reading. Timestamp is unix milliseconds.
type VitalSample struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// Time returns the sample timestamp as a time.Time
func (v VitalSample) Time() time.Time {
	return time.UnixMilli(v.Timestamp)
}
