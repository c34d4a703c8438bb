package main

import "math"

// DefaultHorizon is the number of yearly samples in a projection
const DefaultHorizon = 22

// Trajectory compounds value at rate for n samples: S[i] = value × (1+rate)^i.
// Sample 0 is the starting value.
func Trajectory(value, rate float64, n int) []float64 {
	if n <= 0 {
		return []float64{}
	}
	out := make([]float64, n)
	growth := 1 + rate
	for i := range out {
		out[i] = value * math.Pow(growth, float64(i))
	}
	return out
}

// ScenarioProjection holds the bear, base and bull trajectories for one starting price
type ScenarioProjection struct {
	Price       float64       `json:"price"`
	StartValue  float64       `json:"start_value"`
	HoldingsBTC float64       `json:"holdings_btc,omitempty"` // 0 when one whole coin is projected
	Rates       ScenarioRates `json:"rates"`
	Years       []int         `json:"years"`
	Bear        []float64     `json:"bear"`
	Base        []float64     `json:"base"`
	Bull        []float64     `json:"bull"`
}

// ProjectScenarios compounds startValue at each scenario rate from startYear for horizon years
func ProjectScenarios(startValue float64, rates ScenarioRates, startYear, horizon int) ScenarioProjection {
	years := make([]int, 0, max(horizon, 0))
	for i := 0; i < horizon; i++ {
		years = append(years, startYear+i)
	}
	return ScenarioProjection{
		StartValue: startValue,
		Rates:      rates,
		Years:      years,
		Bear:       Trajectory(startValue, rates.Bear, horizon),
		Base:       Trajectory(startValue, rates.Base, horizon),
		Bull:       Trajectory(startValue, rates.Bull, horizon),
	}
}

// Len returns the number of projected years
func (p ScenarioProjection) Len() int {
	return len(p.Years)
}

// YearValues returns the years as float64 for plotting
func (p ScenarioProjection) YearValues() []float64 {
	out := make([]float64, len(p.Years))
	for i, y := range p.Years {
		out[i] = float64(y)
	}
	return out
}

// Final returns the last bear, base and bull values
func (p ScenarioProjection) Final() (bear, base, bull float64) {
	n := p.Len()
	if n == 0 {
		return 0, 0, 0
	}
	return p.Bear[n-1], p.Base[n-1], p.Bull[n-1]
}
