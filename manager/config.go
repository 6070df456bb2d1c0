package manager

import (
	"time"

	"aistrack/internal/aiscodec"
	"aistrack/target"
)

// WarningRepeatTimeout mirrors warning.WarningRepeatTimeout for callers
// that only import manager.
const WarningRepeatTimeout = 10 * time.Minute

// CleanupLatency bounds how often doCleanup actually sweeps the store,
// even if SendSentence is called far more often than that.
const CleanupLatency = 30 * time.Second

// MinimumAlarmSleep is the floor the surveillance loop clamps its
// per-iteration sleep to, so a slow geometry pass never produces a
// zero or negative sleep.
const MinimumAlarmSleep = 20 * time.Millisecond

// TrackEstimationParameters tunes the own-ship freshness check and the
// surveillance loop's alerting thresholds.
type TrackEstimationParameters struct {
	MaximumPositionAge     time.Duration
	TargetLostTimeout      time.Duration
	WarningDistance        float64 // metres
	WarningTime            time.Duration
	AISSafetyCheckInterval time.Duration
	WarnIfGNSSMissing      bool
}

// DefaultTrackEstimationParameters mirrors typical recreational-marine
// alarm thresholds: a half-mile CPA inside ten minutes is worth a warning.
func DefaultTrackEstimationParameters() TrackEstimationParameters {
	return TrackEstimationParameters{
		MaximumPositionAge:     30 * time.Second,
		TargetLostTimeout:      5 * time.Minute,
		WarningDistance:        926, // ~0.5 nm, in metres
		WarningTime:            10 * time.Minute,
		AISSafetyCheckInterval: 2 * time.Second,
		WarnIfGNSSMissing:      true,
	}
}

// Config holds the manager's externally-tunable behaviour.
type Config struct {
	OwnMMSI                  target.MMSI
	OwnShipName              string
	Dimensions               target.Dimensions
	AutoSendWarnings         bool
	DeleteTargetAfterTimeout time.Duration // 0 = infinite, never pruned
	ThrowOnUnknownMessage    bool
	GeneratedSentencesID     aiscodec.SentenceID
	TrackEstimation          TrackEstimationParameters
}

// DefaultConfig returns a Config with autoSendWarnings on and the
// default track estimation parameters, matching the spec's defaults.
func DefaultConfig() Config {
	return Config{
		AutoSendWarnings:     true,
		GeneratedSentencesID: aiscodec.SentenceIDVDO,
		TrackEstimation:      DefaultTrackEstimationParameters(),
	}
}
