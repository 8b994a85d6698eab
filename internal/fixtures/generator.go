package fixtures

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"

	"github.com/clubops/gpscanon/pkg/logger"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000
	profileDivisor     = 4
)

// Constants for workload generation ranges. Distances are meters, speeds
// km/h, durations minutes.
const (
	starterDistanceMin   = 8000.0
	starterDistanceRange = 4000.0
	starterSpeedMin      = 28.0
	starterSpeedRange    = 8.0
	starterMinutes       = 90

	subDistanceMin   = 2500.0
	subDistanceRange = 2500.0
	subSpeedMin      = 24.0
	subSpeedRange    = 8.0
	subMinutes       = 30

	keeperDistanceMin   = 3500.0
	keeperDistanceRange = 1500.0
	keeperSpeedMin      = 18.0
	keeperSpeedRange    = 6.0
	keeperMinutes       = 90

	rehabDistanceMin   = 1000.0
	rehabDistanceRange = 1500.0
	rehabSpeedMin      = 12.0
	rehabSpeedRange    = 6.0
	rehabMinutes       = 45

	sprintShare = 0.08
	hsrShare    = 0.15
	loadPerKm   = 55.0
)

// Workload profile cases.
const (
	caseStarter = 0
	caseSub     = 1
	caseKeeper  = 2
	caseRehab   = 3
)

// Column headers as a typical vendor export names them.
var fixtureHeaders = []string{
	"Player", "Position", "TD", "Max Speed", "HSR", "Sprint Distance", "Load", "Time",
}

var firstNames = []string{
	"Ivan", "Petr", "Sergey", "Dmitry", "Andrey", "Alexey",
	"Artem", "Nikita", "Maxim", "Kirill", "Egor", "Roman",
}

var lastNames = []string{
	"Ivanov", "Petrov", "Sidorov", "Smirnov", "Kuznetsov", "Popov",
	"Volkov", "Sokolov", "Lebedev", "Kozlov", "Novikov", "Morozov",
}

var positions = []string{"GK", "CB", "LB", "RB", "CM", "ST"}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

func getRandomInt(max int) int {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(max)))
	return int(n.Int64())
}

// GenerateSessions builds the requested number of session fixtures.
func GenerateSessions(ctx context.Context, config *Config, stats *Stats) ([]Session, error) {
	if config.Players < 1 {
		return nil, fmt.Errorf("players must be positive, got %d", config.Players)
	}

	logger.Get().Info(ctx, "generating session fixtures",
		logger.Int("sessions", config.Sessions),
		logger.Int("players", config.Players))

	sessions := make([]Session, 0, config.Sessions)
	for i := 0; i < config.Sessions; i++ {
		sessions = append(sessions, generateSession(i+1, config.Players))
	}

	stats.Generated = len(sessions)
	return sessions, nil
}

func generateSession(index, players int) Session {
	session := Session{
		Name:    fmt.Sprintf("session_%03d", index),
		Headers: fixtureHeaders,
		Rows:    make([]map[string]string, 0, players+1),
	}

	var totalDistance, totalSpeed float64
	for i := 0; i < players; i++ {
		row := generatePlayerRow(i)
		session.Rows = append(session.Rows, row)

		d, _ := strconv.ParseFloat(row["TD"], 64)
		s, _ := strconv.ParseFloat(row["Max Speed"], 64)
		totalDistance += d
		totalSpeed += s
	}

	// Vendors append an aggregate footer row.
	session.Rows = append(session.Rows, map[string]string{
		"Player":    "Average",
		"TD":        formatFloat(totalDistance / float64(players)),
		"Max Speed": formatFloat(totalSpeed / float64(players)),
	})
	return session
}

func generatePlayerRow(index int) map[string]string {
	first := firstNames[getRandomInt(len(firstNames))]
	last := lastNames[index%len(lastNames)]

	var (
		distance, speed float64
		minutes         int
		position        string
	)
	switch getRandomInt(profileDivisor) {
	case caseStarter:
		distance = starterDistanceMin + getRandomFloat()*starterDistanceRange
		speed = starterSpeedMin + getRandomFloat()*starterSpeedRange
		minutes = starterMinutes
		position = positions[1+getRandomInt(len(positions)-1)]
	case caseSub:
		distance = subDistanceMin + getRandomFloat()*subDistanceRange
		speed = subSpeedMin + getRandomFloat()*subSpeedRange
		minutes = subMinutes
		position = positions[1+getRandomInt(len(positions)-1)]
	case caseKeeper:
		distance = keeperDistanceMin + getRandomFloat()*keeperDistanceRange
		speed = keeperSpeedMin + getRandomFloat()*keeperSpeedRange
		minutes = keeperMinutes
		position = "GK"
	default:
		distance = rehabDistanceMin + getRandomFloat()*rehabDistanceRange
		speed = rehabSpeedMin + getRandomFloat()*rehabSpeedRange
		minutes = rehabMinutes
		position = positions[1+getRandomInt(len(positions)-1)]
	}

	return map[string]string{
		"Player":          first + " " + last,
		"Position":        position,
		"TD":              formatFloat(distance),
		"Max Speed":       formatFloat(speed),
		"HSR":             formatFloat(distance * hsrShare),
		"Sprint Distance": formatFloat(distance * sprintShare),
		"Load":            formatFloat(distance / 1000 * loadPerKm),
		"Time":            fmt.Sprintf("%02d:%02d:00", minutes/60, minutes%60),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
