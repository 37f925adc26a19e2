package mirror

import (
	"time"
	_ "time/tzdata" // the mirror runs on minimal hosts without /usr/share/zoneinfo.

	"gitlab.com/efronlicht/enve"
)

// Config holds the knobs both generators share. See ConfigFromEnv.
type Config struct {
	Location         *time.Location // upload dates are shown in this zone.
	MaxDownloadBytes uint64         // above this, a directory gets no archive link.
	LinkTargetMax    int            // symlink targets longer than this are cut short.
	SiteName         string         // page title.
	Project          string         // "made with revision N of Project".
}

const defaultTimezone = "America/New_York"

// DefaultConfig is what ConfigFromEnv returns with an empty environment.
func DefaultConfig() Config {
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		panic(err) // unreachable: tzdata is linked in.
	}
	return Config{
		Location:         loc,
		MaxDownloadBytes: 10_000_000_000,
		LinkTargetMax:    40,
		SiteName:         "Kaldi ASR",
		Project:          "Kaldi",
	}
}

// ConfigFromEnv reads Config from the environment, falling back to DefaultConfig field by field:
//
//	INDEX_TIMEZONE            IANA zone name           (America/New_York)
//	INDEX_MAX_DOWNLOAD_BYTES  uint64                   (10000000000)
//	INDEX_LINK_TARGET_MAX     int                      (40)
//	INDEX_SITE_NAME           string                   (Kaldi ASR)
//	INDEX_PROJECT             string                   (Kaldi)
func ConfigFromEnv() Config {
	def := DefaultConfig()
	cfg := Config{
		Location:         enve.Or(time.LoadLocation, "INDEX_TIMEZONE", def.Location),
		MaxDownloadBytes: enve.Uint64Or("INDEX_MAX_DOWNLOAD_BYTES", def.MaxDownloadBytes),
		LinkTargetMax:    enve.IntOr("INDEX_LINK_TARGET_MAX", def.LinkTargetMax),
		SiteName:         enve.StringOr("INDEX_SITE_NAME", def.SiteName),
		Project:          enve.StringOr("INDEX_PROJECT", def.Project),
	}
	if cfg.LinkTargetMax < 3 {
		cfg.LinkTargetMax = def.LinkTargetMax
	}
	return cfg
}
