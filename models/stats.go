package models

import "time"

// Stats is the process-wide counter document.
type Stats struct {
	HourlyNewItems  map[int]int `json:"hourlyNewItems"`
	TotalChecks     int         `json:"totalChecks"`
	TotalNewItems   int         `json:"totalNewItems"`
	LastNewItemTime *time.Time  `json:"lastNewItemTime"`
	ErrorCount      int         `json:"errorCount"`
	LastErrorTime   *time.Time  `json:"lastErrorTime"`
}

// NewStats returns an empty document with all 24 hourly buckets present.
func NewStats() *Stats {
	s := &Stats{HourlyNewItems: make(map[int]int, 24)}
	for h := 0; h < 24; h++ {
		s.HourlyNewItems[h] = 0
	}
	return s
}

// Clone returns a deep copy, safe to read from another goroutine.
func (s *Stats) Clone() *Stats {
	c := *s
	c.HourlyNewItems = make(map[int]int, len(s.HourlyNewItems))
	for h, n := range s.HourlyNewItems {
		c.HourlyNewItems[h] = n
	}
	if s.LastNewItemTime != nil {
		t := *s.LastNewItemTime
		c.LastNewItemTime = &t
	}
	if s.LastErrorTime != nil {
		t := *s.LastErrorTime
		c.LastErrorTime = &t
	}
	return &c
}
