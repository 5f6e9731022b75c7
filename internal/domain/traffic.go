package domain

import "time"

// Observation is one (time, vehicle count, temperature) sample
type Observation struct {
	Timestamp   time.Time `json:"timestamp"`
	Count       int       `json:"count"`
	Temperature float64   `json:"temperature"`
}

// Prediction is a single forecast vehicle count
type Prediction struct {
	Timestamp   time.Time `json:"timestamp"`
	Count       int       `json:"predicted_count"`
	Temperature float64   `json:"temperature"`
}

// PredictionSet holds the parallel sequences produced by a forecast.
// All three slices have the same length; an empty set means there was not
// enough history to fit a model.
type PredictionSet struct {
	Times        []time.Time `json:"times"`
	Counts       []int       `json:"counts"`
	Temperatures []float64   `json:"temperatures"`
}

// Len returns the number of predicted minutes
func (p PredictionSet) Len() int {
	return len(p.Times)
}

// Empty reports whether the set holds no predictions
func (p PredictionSet) Empty() bool {
	return len(p.Times) == 0
}

// Points zips the parallel sequences into predictions
func (p PredictionSet) Points() []Prediction {
	points := make([]Prediction, len(p.Times))
	for i := range p.Times {
		points[i] = Prediction{
			Timestamp:   p.Times[i],
			Count:       p.Counts[i],
			Temperature: p.Temperatures[i],
		}
	}
	return points
}

// Max returns the largest predicted count
func (p PredictionSet) Max() (int, bool) {
	if len(p.Counts) == 0 {
		return 0, false
	}
	best := p.Counts[0]
	for _, c := range p.Counts[1:] {
		if c > best {
			best = c
		}
	}
	return best, true
}

// CountAbove returns how many predictions strictly exceed threshold
func (p PredictionSet) CountAbove(threshold float64) int {
	n := 0
	for _, c := range p.Counts {
		if float64(c) > threshold {
			n++
		}
	}
	return n
}

// TrafficLevel is a coarse label for a monitor point
type TrafficLevel string

const (
	TrafficHeavy    TrafficLevel = "Heavy"
	TrafficModerate TrafficLevel = "Moderate"
	TrafficLight    TrafficLevel = "Light"
)

// Color returns the marker colour used on the area map
func (l TrafficLevel) Color() string {
	switch l {
	case TrafficHeavy:
		return "red"
	case TrafficModerate:
		return "orange"
	default:
		return "green"
	}
}

// Location is a fixed traffic monitor point shown on the area map
type Location struct {
	Name             string       `json:"name"`
	Latitude         float64      `json:"lat"`
	Longitude        float64      `json:"lon"`
	TrafficLevel     TrafficLevel `json:"traffic"`
	Color            string       `json:"color"`
	DistanceFromHubM float64      `json:"distance_from_hub_m"`
}
