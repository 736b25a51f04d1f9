// Package podiumcheck drives concurrent podium updates against a running
// leaderboard and verifies the resulting standings.
package podiumcheck

import (
	"time"

	"github.com/okian/podium/internal/domain/scoring"
)

// Config holds configuration for a check run.
type Config struct {
	BaseURL     string         // Base URL of the service
	Updates     int            // Number of podium updates to submit
	Workers     int            // Number of concurrent workers
	Rate        float64        // Updates per second across all workers, 0 for unlimited
	Timeout     time.Duration  // HTTP request timeout
	Sports      []string       // Sports to update
	Communities []string       // Communities to draw podium slots from
	EmptySlotP  float64        // Probability that a slot is left empty
	Seed        uint64         // Seed for the update generator
	Scheme      scoring.Scheme // Points the server is expected to award
	LogFile     string         // Log file for check output
	Verbose     bool           // Log every failed update
}

// Stats holds check statistics.
type Stats struct {
	UpdatesGenerated  int
	UpdatesSubmitted  int
	UpdatesApplied    int
	UpdatesConflicted int
	UpdatesFailed     int
	PodiumsVerified   int
	StandingsVerified int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// Update is one podium submission.
type Update struct {
	SportID string  `json:"-"`
	First   *string `json:"first"`
	Second  *string `json:"second"`
	Third   *string `json:"third"`
}
