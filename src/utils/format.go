// backend/src/utils/format.go
package utils

import "math"

// RoundFloat rounds a float to the given number of decimal places.
func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
