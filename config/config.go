// Package config loads manager.Config from a YAML file plus AISTRACK_-
// prefixed environment overrides, via spf13/viper. Unlike the
// manager/codec/store packages (each grounded on a specific reference
// file), no example repo in the pack actually imports viper in code —
// billglover-go-adsb-console lists it in go.mod without using it. This
// loader is written in viper's own idiomatic style rather than against
// a pack exemplar; see DESIGN.md.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"aistrack/internal/aiscodec"
	"aistrack/manager"
	"aistrack/target"
)

// Load reads manager configuration from path (YAML) with environment
// variable overrides under the AISTRACK_ prefix (e.g.
// AISTRACK_OWNMMSI), falling back to manager.DefaultConfig for any
// field left unset.
func Load(path string) (manager.Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("aistrack")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	def := manager.DefaultConfig()
	v.SetDefault("ownmmsi", 0)
	v.SetDefault("ownshipname", "")
	v.SetDefault("autosendwarnings", def.AutoSendWarnings)
	v.SetDefault("deletetargetaftertimeout", "0s")
	v.SetDefault("throwonunknownmessage", def.ThrowOnUnknownMessage)
	v.SetDefault("generatedsentencesid", "VDO")
	v.SetDefault("dimensions.tobow", 0.0)
	v.SetDefault("dimensions.tostern", 0.0)
	v.SetDefault("dimensions.toport", 0.0)
	v.SetDefault("dimensions.tostarboard", 0.0)
	v.SetDefault("trackestimation.maximumpositionage", def.TrackEstimation.MaximumPositionAge.String())
	v.SetDefault("trackestimation.targetlosttimeout", def.TrackEstimation.TargetLostTimeout.String())
	v.SetDefault("trackestimation.warningdistance", def.TrackEstimation.WarningDistance)
	v.SetDefault("trackestimation.warningtime", def.TrackEstimation.WarningTime.String())
	v.SetDefault("trackestimation.aissafetycheckinterval", def.TrackEstimation.AISSafetyCheckInterval.String())
	v.SetDefault("trackestimation.warnifgnssmissing", def.TrackEstimation.WarnIfGNSSMissing)

	if err := v.ReadInConfig(); err != nil {
		return manager.Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	deleteAfter, err := time.ParseDuration(v.GetString("deletetargetaftertimeout"))
	if err != nil {
		return manager.Config{}, fmt.Errorf("config: deletetargetaftertimeout: %w", err)
	}

	sentenceID := aiscodec.SentenceIDVDO
	if strings.EqualFold(v.GetString("generatedsentencesid"), "VDM") {
		sentenceID = aiscodec.SentenceIDVDM
	}

	te, err := loadTrackEstimation(v)
	if err != nil {
		return manager.Config{}, err
	}

	return manager.Config{
		OwnMMSI:     target.MMSI(v.GetUint32("ownmmsi")),
		OwnShipName: v.GetString("ownshipname"),
		Dimensions: target.Dimensions{
			ToBow:       v.GetFloat64("dimensions.tobow"),
			ToStern:     v.GetFloat64("dimensions.tostern"),
			ToPort:      v.GetFloat64("dimensions.toport"),
			ToStarboard: v.GetFloat64("dimensions.tostarboard"),
		},
		AutoSendWarnings:         v.GetBool("autosendwarnings"),
		DeleteTargetAfterTimeout: deleteAfter,
		ThrowOnUnknownMessage:    v.GetBool("throwonunknownmessage"),
		GeneratedSentencesID:     sentenceID,
		TrackEstimation:          te,
	}, nil
}

func loadTrackEstimation(v *viper.Viper) (manager.TrackEstimationParameters, error) {
	maxAge, err := time.ParseDuration(v.GetString("trackestimation.maximumpositionage"))
	if err != nil {
		return manager.TrackEstimationParameters{}, fmt.Errorf("config: trackestimation.maximumpositionage: %w", err)
	}
	lostTimeout, err := time.ParseDuration(v.GetString("trackestimation.targetlosttimeout"))
	if err != nil {
		return manager.TrackEstimationParameters{}, fmt.Errorf("config: trackestimation.targetlosttimeout: %w", err)
	}
	warningTime, err := time.ParseDuration(v.GetString("trackestimation.warningtime"))
	if err != nil {
		return manager.TrackEstimationParameters{}, fmt.Errorf("config: trackestimation.warningtime: %w", err)
	}
	checkInterval, err := time.ParseDuration(v.GetString("trackestimation.aissafetycheckinterval"))
	if err != nil {
		return manager.TrackEstimationParameters{}, fmt.Errorf("config: trackestimation.aissafetycheckinterval: %w", err)
	}

	return manager.TrackEstimationParameters{
		MaximumPositionAge:     maxAge,
		TargetLostTimeout:      lostTimeout,
		WarningDistance:        v.GetFloat64("trackestimation.warningdistance"),
		WarningTime:            warningTime,
		AISSafetyCheckInterval: checkInterval,
		WarnIfGNSSMissing:      v.GetBool("trackestimation.warnifgnssmissing"),
	}, nil
}
