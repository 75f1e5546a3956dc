package model

// WindowSummary holds descriptive statistics of an extracted window.
type WindowSummary struct {
	Mean         float64
	StdDev       float64 // sample standard deviation
	High         float64
	Low          float64
	Position     float64 // last value within [Low, High], 0.0 ~ 1.0
	TrailingMean float64 // mean of the most recent values
}
