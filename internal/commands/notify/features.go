package notifycmd

import (
	"time"

	"github.com/darshanbajgain/darshan-blog-temp/internal/commands"
)

// FeatureGates exposes runtime toggles and collaborators the handlers read at
// execution time, so they stay decoupled from configuration.
type FeatureGates struct {
	NotificationsEnabled func() bool
	// Now stamps processed markers. Defaults to the UTC wall clock.
	Now func() time.Time
	// Recorder receives command outcomes when set.
	Recorder commands.Recorder
}

func (g FeatureGates) notificationsEnabled() bool {
	if g.NotificationsEnabled == nil {
		return true
	}
	return g.NotificationsEnabled()
}

func (g FeatureGates) clock() func() time.Time {
	if g.Now == nil {
		return defaultClock()
	}
	return g.Now
}
