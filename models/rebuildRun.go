package models

import "time"

// RunStats is the outcome of one balance rebuild pass.
type RunStats struct {
	CorrelationId string        `json:"correlation_id"`
	Trigger       string        `json:"trigger"`
	StartedAt     time.Time     `json:"started_at"`
	FinishedAt    time.Time     `json:"finished_at"`
	Duration      time.Duration `json:"duration"`
	Parties       int           `json:"parties"`
	Updated       int           `json:"updated"`
	Unchanged     int           `json:"unchanged"`
	Errors        int           `json:"errors"`
	Skipped       bool          `json:"skipped,omitempty"`
	Aborted       bool          `json:"aborted"`
	AbortReason   string        `json:"abort_reason,omitempty"`
}

type RebuildStatus struct {
	IsInitialized bool       `json:"isInitialized"`
	IsRunning     bool       `json:"isRunning"`
	Schedule      string     `json:"schedule"`
	LastRunTime   *time.Time `json:"lastRunTime"`
	LastRunStats  *RunStats  `json:"lastRunStats"`
	LastAbort     *RunStats  `json:"lastAbort,omitempty"`
}
