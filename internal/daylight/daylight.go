// Package daylight answers whether a moment falls inside a site's night window.
// Dawn and dusk are civil twilight: the sun 6 degrees below the horizon.
package daylight

import (
	"fmt"
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// civilAltitude is the sun's altitude, in radians, at civil dawn and dusk.
var civilAltitude = -6 * math.Pi / 180

// Location is a fixed observation site.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Zone      *time.Location
}

// NewLocation loads the IANA zone and validates the coordinates.
func NewLocation(name string, lat, lon float64, zone string) (Location, error) {
	if lat < -90 || lat > 90 {
		return Location{}, fmt.Errorf("latitude out of range: %f", lat)
	}
	if lon < -180 || lon > 180 {
		return Location{}, fmt.Errorf("longitude out of range: %f", lon)
	}
	tz, err := time.LoadLocation(zone)
	if err != nil {
		return Location{}, fmt.Errorf("load zone %q: %w", zone, err)
	}
	return Location{Name: name, Latitude: lat, Longitude: lon, Zone: tz}, nil
}

// Window is the civil daylight window of one local calendar date.
// AlwaysDark and AlwaysLight cover polar days where Dawn and Dusk do not exist.
type Window struct {
	Date        time.Time
	Dawn        time.Time
	Dusk        time.Time
	AlwaysDark  bool
	AlwaysLight bool
}

// Window computes dawn and dusk for the local calendar date of ts.
// ts is normalized into the site zone before the date is taken.
func (l Location) Window(ts time.Time) Window {
	zone := l.zone()
	y, m, d := ts.In(zone).Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, zone)
	noon := time.Date(y, m, d, 12, 0, 0, 0, zone)

	w := Window{Date: date}
	times := suncalc.GetTimes(noon, l.Latitude, l.Longitude)
	dawn, dawnOK := near(times[suncalc.Dawn].Value, noon)
	dusk, duskOK := near(times[suncalc.Dusk].Value, noon)
	if dawnOK && duskOK {
		w.Dawn, w.Dusk = dawn.In(zone), dusk.In(zone)
		return w
	}

	// No civil twilight today: the sun is either always above or always
	// below -6 degrees, so its height at transit settles which one.
	transit := noon
	if t, ok := near(times[suncalc.SolarNoon].Value, noon); ok {
		transit = t
	}
	if suncalc.GetPosition(transit, l.Latitude, l.Longitude).Altitude < civilAltitude {
		w.AlwaysDark = true
	} else {
		w.AlwaysLight = true
	}
	return w
}

// IsNight is true iff ts is strictly before dawn or strictly after dusk of its
// local date. Both sides are compared as instants in the site zone.
func (l Location) IsNight(ts time.Time) bool {
	w := l.Window(ts)
	switch {
	case w.AlwaysDark:
		return true
	case w.AlwaysLight:
		return false
	}
	local := ts.In(l.zone())
	return local.Before(w.Dawn) || local.After(w.Dusk)
}

func (l Location) zone() *time.Location {
	if l.Zone == nil {
		return time.UTC
	}
	return l.Zone
}

// near rejects the zero time and the out-of-range instants suncalc yields
// when an event does not happen on the day around noon.
func near(t, noon time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	if d := t.Sub(noon); d <= -24*time.Hour || d >= 24*time.Hour {
		return time.Time{}, false
	}
	return t, true
}
