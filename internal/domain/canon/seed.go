package canon

import (
	"fmt"

	"github.com/clubops/gpscanon/internal/domain/units"
)

// Supported unit sets shared by metric families.
var (
	distanceUnits = []string{"m", "km", "yd"}
	timeUnits     = []string{"s", "min", "h"}
	speedUnits    = []string{"m/s", "km/h", "m/min", "mph"}
	accelUnits    = []string{"m/s^2", "g"}
	heartUnits    = []string{"bpm", "%HRmax"}
	ratioUnits    = []string{"ratio", "%"}
	countUnits    = []string{"count"}
)

const zoneCount = 6

// seedMetrics returns the full canonical metric catalog. Codes are stable
// keys, never renumbered; changing this table is a registry change.
func seedMetrics() []Metric {
	metrics := []Metric{
		// Identity
		{Code: "athlete_name", Label: "Athlete name", Category: "identity",
			Dimension: units.Identity, CanonicalUnit: "string", SupportedUnits: []string{"string"}},
		{Code: "position", Label: "Position", Category: "identity",
			Dimension: units.Identity, CanonicalUnit: "string", SupportedUnits: []string{"string"}},

		// Participation
		{Code: "duration", Label: "Time on field", Category: "participation",
			Dimension: units.Time, CanonicalUnit: "s", SupportedUnits: timeUnits},

		// Distance
		{Code: "total_distance", Label: "Total distance", Category: "distance",
			Dimension: units.Distance, CanonicalUnit: "m", SupportedUnits: distanceUnits},

		// Speed
		{Code: "max_speed", Label: "Max speed", Category: "speed",
			Dimension: units.Speed, CanonicalUnit: "m/s", SupportedUnits: speedUnits},
		{Code: "avg_speed", Label: "Average speed", Category: "speed",
			Dimension: units.Speed, CanonicalUnit: "m/s", SupportedUnits: speedUnits},
	}

	// Speed zones: distance, time, entries per zone.
	for z := 1; z <= zoneCount; z++ {
		metrics = append(metrics,
			Metric{Code: fmt.Sprintf("distance_zone%d", z), Label: fmt.Sprintf("Distance in speed zone %d", z),
				Category: "speed_zones", Dimension: units.Distance, CanonicalUnit: "m", SupportedUnits: distanceUnits},
		)
	}
	for z := 1; z <= zoneCount; z++ {
		metrics = append(metrics,
			Metric{Code: fmt.Sprintf("time_in_speed_zone%d", z), Label: fmt.Sprintf("Time in speed zone %d", z),
				Category: "speed_zones", Dimension: units.Time, CanonicalUnit: "s", SupportedUnits: timeUnits},
		)
	}
	for z := 1; z <= zoneCount; z++ {
		metrics = append(metrics,
			Metric{Code: fmt.Sprintf("speed_zone%d_entries", z), Label: fmt.Sprintf("Entries into speed zone %d", z),
				Category: "speed_zones", Dimension: units.Count, CanonicalUnit: "count", SupportedUnits: countUnits},
		)
	}

	// High-speed running and sprints.
	metrics = append(metrics,
		Metric{Code: "hsr_distance", Label: "High-speed running distance", Category: "hsr_sprint",
			Dimension: units.Distance, CanonicalUnit: "m", SupportedUnits: distanceUnits},
		Metric{Code: "sprint_distance", Label: "Sprint distance", Category: "hsr_sprint",
			Dimension: units.Distance, CanonicalUnit: "m", SupportedUnits: distanceUnits},
		Metric{Code: "sprints_count", Label: "Sprint count", Category: "hsr_sprint",
			Dimension: units.Count, CanonicalUnit: "count", SupportedUnits: countUnits},
		Metric{Code: "hsr_percentage", Label: "High-speed running share", Category: "hsr_sprint",
			Dimension: units.Ratio, CanonicalUnit: "ratio", SupportedUnits: ratioUnits},
	)

	// Acceleration and deceleration zone counts.
	for z := 1; z <= zoneCount; z++ {
		metrics = append(metrics,
			Metric{Code: fmt.Sprintf("acc_zone%d_count", z), Label: fmt.Sprintf("Accelerations in zone %d", z),
				Category: "acc_dec", Dimension: units.Count, CanonicalUnit: "count", SupportedUnits: countUnits},
		)
	}
	for z := 1; z <= zoneCount; z++ {
		metrics = append(metrics,
			Metric{Code: fmt.Sprintf("dec_zone%d_count", z), Label: fmt.Sprintf("Decelerations in zone %d", z),
				Category: "acc_dec", Dimension: units.Count, CanonicalUnit: "count", SupportedUnits: countUnits},
		)
	}

	metrics = append(metrics,
		Metric{Code: "max_acceleration", Label: "Max acceleration", Category: "acc_dec",
			Dimension: units.Acceleration, CanonicalUnit: "m/s^2", SupportedUnits: accelUnits},
		Metric{Code: "max_deceleration", Label: "Max deceleration", Category: "acc_dec",
			Dimension: units.Acceleration, CanonicalUnit: "m/s^2", SupportedUnits: accelUnits},

		// Heart rate
		Metric{Code: "avg_heart_rate", Label: "Average heart rate", Category: "heart",
			Dimension: units.HeartRate, CanonicalUnit: "bpm", SupportedUnits: heartUnits},
		Metric{Code: "max_heart_rate", Label: "Max heart rate", Category: "heart",
			Dimension: units.HeartRate, CanonicalUnit: "bpm", SupportedUnits: heartUnits},
	)

	// Heart rate zone times.
	for z := 1; z <= zoneCount; z++ {
		metrics = append(metrics,
			Metric{Code: fmt.Sprintf("time_in_hr_zone%d", z), Label: fmt.Sprintf("Time in heart rate zone %d", z),
				Category: "heart_zones", Dimension: units.Time, CanonicalUnit: "s", SupportedUnits: timeUnits},
		)
	}

	metrics = append(metrics,
		// Load and impacts
		Metric{Code: "player_load", Label: "Player load", Category: "load",
			Dimension: units.Load, CanonicalUnit: "AU", SupportedUnits: []string{"AU"}},
		Metric{Code: "impacts_count", Label: "Impacts", Category: "load",
			Dimension: units.Count, CanonicalUnit: "count", SupportedUnits: countUnits},

		// Intensity
		Metric{Code: "power_score", Label: "Power score", Category: "intensity",
			Dimension: units.PowerMassNorm, CanonicalUnit: "W/kg", SupportedUnits: []string{"W/kg"}},
		Metric{Code: "work_ratio", Label: "Work ratio", Category: "intensity",
			Dimension: units.Ratio, CanonicalUnit: "ratio", SupportedUnits: ratioUnits},
		Metric{Code: "hml_distance", Label: "High metabolic load distance", Category: "intensity",
			Dimension: units.Distance, CanonicalUnit: "m", SupportedUnits: distanceUnits},
		Metric{Code: "explosive_distance", Label: "Explosive distance", Category: "intensity",
			Dimension: units.Distance, CanonicalUnit: "m", SupportedUnits: distanceUnits},

		// Derived
		Metric{Code: "distance_per_min", Label: "Distance per minute", Category: "derived",
			Dimension: units.Speed, CanonicalUnit: "m/s", SupportedUnits: speedUnits,
			IsDerived: true, Formula: "total_distance / (duration / 60)"},
	)

	return metrics
}
