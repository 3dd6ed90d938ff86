package daylight

import (
	"testing"
	"time"
)

func seattle(t *testing.T) Location {
	t.Helper()
	loc, err := NewLocation("Seattle", 47.6209673, -122.348993, "America/Los_Angeles")
	if err != nil {
		t.Fatalf("NewLocation: %v", err)
	}
	return loc
}

func within(got, want time.Time, tol time.Duration) bool {
	d := got.Sub(want)
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestWindow_Seattle(t *testing.T) {
	loc := seattle(t)
	pt := loc.Zone

	tests := []struct {
		name     string
		at       time.Time
		wantDawn time.Time
		wantDusk time.Time
	}{
		{
			name:     "summer solstice",
			at:       time.Date(2021, 6, 19, 12, 0, 0, 0, pt),
			wantDawn: time.Date(2021, 6, 19, 4, 30, 10, 0, pt),
			wantDusk: time.Date(2021, 6, 19, 21, 52, 3, 0, pt),
		},
		{
			name:     "winter solstice",
			at:       time.Date(2021, 12, 21, 12, 0, 0, 0, pt),
			wantDawn: time.Date(2021, 12, 21, 7, 18, 0, 0, pt),
			wantDusk: time.Date(2021, 12, 21, 16, 57, 0, 0, pt),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := loc.Window(tt.at)
			if w.AlwaysDark || w.AlwaysLight {
				t.Fatalf("unexpected polar window: %+v", w)
			}
			if !within(w.Dawn, tt.wantDawn, 3*time.Minute) {
				t.Errorf("Dawn = %v, want ~%v", w.Dawn, tt.wantDawn)
			}
			if !within(w.Dusk, tt.wantDusk, 3*time.Minute) {
				t.Errorf("Dusk = %v, want ~%v", w.Dusk, tt.wantDusk)
			}
		})
	}
}

// A UTC instant early on June 20 is still the afternoon of June 19 in Seattle.
func TestIsNight_NormalizesZone(t *testing.T) {
	loc := seattle(t)
	ts := time.Date(2021, 6, 20, 0, 21, 38, 0, time.UTC)
	if loc.IsNight(ts) {
		t.Errorf("IsNight(%v) = true, want false (17:21 PDT)", ts)
	}
	w := loc.Window(ts)
	if y, m, d := w.Date.Date(); y != 2021 || m != time.June || d != 19 {
		t.Errorf("Window date = %v, want 2021-06-19", w.Date)
	}
}

func TestIsNight_Boundaries(t *testing.T) {
	loc := seattle(t)
	for _, day := range []time.Time{
		time.Date(2021, 6, 19, 12, 0, 0, 0, loc.Zone),
		time.Date(2022, 1, 5, 12, 0, 0, 0, loc.Zone),
		time.Date(2024, 3, 10, 12, 0, 0, 0, loc.Zone),
		time.Date(2024, 11, 3, 12, 0, 0, 0, loc.Zone),
	} {
		w := loc.Window(day)
		mid := w.Dawn.Add(w.Dusk.Sub(w.Dawn) / 2)

		cases := []struct {
			name string
			at   time.Time
			want bool
		}{
			{"before dawn", w.Dawn.Add(-time.Minute), true},
			{"at dawn", w.Dawn, false},
			{"after dawn", w.Dawn.Add(time.Minute), false},
			{"midday", mid, false},
			{"before dusk", w.Dusk.Add(-time.Minute), false},
			{"at dusk", w.Dusk, false},
			{"after dusk", w.Dusk.Add(time.Minute), true},
			{"local midnight", w.Date, true},
			{"utc view of midday", mid.UTC(), false},
		}
		for _, c := range cases {
			if got := loc.IsNight(c.at); got != c.want {
				t.Errorf("%s %s: IsNight(%v) = %v, want %v", day.Format("2006-01-02"), c.name, c.at, got, c.want)
			}
		}
	}
}

func TestWindow_Polar(t *testing.T) {
	svalbard, err := NewLocation("Longyearbyen", 78.2, 15.6, "Arctic/Longyearbyen")
	if err != nil {
		t.Fatalf("NewLocation: %v", err)
	}

	summer := time.Date(2021, 6, 21, 0, 30, 0, 0, svalbard.Zone)
	if w := svalbard.Window(summer); !w.AlwaysLight {
		t.Errorf("June window = %+v, want AlwaysLight", w)
	}
	if svalbard.IsNight(summer) {
		t.Error("IsNight(midnight sun) = true, want false")
	}

	winter := time.Date(2021, 12, 21, 12, 0, 0, 0, svalbard.Zone)
	if w := svalbard.Window(winter); !w.AlwaysDark {
		t.Errorf("December window = %+v, want AlwaysDark", w)
	}
	if !svalbard.IsNight(winter) {
		t.Error("IsNight(polar night noon) = false, want true")
	}
}

func TestNewLocation_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		zone     string
	}{
		{"latitude", 91, 0, "UTC"},
		{"longitude", 0, -181, "UTC"},
		{"zone", 0, 0, "Mars/Olympus_Mons"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLocation("x", tt.lat, tt.lon, tt.zone); err == nil {
				t.Fatal("NewLocation error = nil, want error")
			}
		})
	}
}

func TestWindow_TimesInSiteZone(t *testing.T) {
	loc := seattle(t)
	w := loc.Window(time.Date(2021, 7, 1, 19, 0, 0, 0, time.UTC))
	if w.Dawn.Location() != loc.Zone || w.Dusk.Location() != loc.Zone {
		t.Fatalf("window zones = %v/%v, want %v", w.Dawn.Location(), w.Dusk.Location(), loc.Zone)
	}
	if !w.Dawn.Before(w.Dusk) {
		t.Errorf("Dawn %v is not before Dusk %v", w.Dawn, w.Dusk)
	}
	if y, m, d := w.Dawn.Date(); y != 2021 || m != time.July || d != 1 {
		t.Errorf("Dawn date = %v, want 2021-07-01", w.Dawn)
	}
}

func TestNear(t *testing.T) {
	noon := time.Date(2021, 7, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"zero", time.Time{}, false},
		{"same day", noon.Add(9 * time.Hour), true},
		{"just after midnight", noon.Add(13 * time.Hour), true},
		{"a day away", noon.Add(24 * time.Hour), false},
		{"far past", time.Unix(-1<<40, 0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := near(tt.at, noon); ok != tt.want {
				t.Errorf("near(%v) ok = %v, want %v", tt.at, ok, tt.want)
			}
		})
	}
}
