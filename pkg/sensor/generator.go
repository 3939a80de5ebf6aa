package sensor

import (
	"math"
	"math/rand"
)

// Curve shapes for generated daily datasets
const (
	CurveSine = iota
	CurveBell
)

// Typical indoor environment bounds used as generation defaults
const (
	LowNormalIndoorTemp  = 18.0
	HiNormalIndoorTemp   = 22.0
	LowNormalEnvHumidity = 35.0
	HiNormalEnvHumidity  = 45.0
	LowNormalEnvPressure = 990.0
	HiNormalEnvPressure  = 1010.0
	LowNormalCO2         = 400.0
	HiNormalCO2          = 1200.0
)

// EntriesPerDay is one dataset entry per minute of a 24 hour day
const EntriesPerDay = 24 * 60

// DataGenerator produces bounded daily datasets for simulated sensors
type DataGenerator struct {
	rng *rand.Rand
}

// NewDataGenerator creates a data generator with the given seed. A fixed seed
// yields a reproducible dataset, which the tests rely on.
func NewDataGenerator(seed int64) *DataGenerator {
	return &DataGenerator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// GenerateDailyDataSet produces EntriesPerDay values following the requested
// curve between minVal and maxVal, with noiseLevel percent jitter
func (g *DataGenerator) GenerateDailyDataSet(curveType int, minVal, maxVal, noiseLevel float64) []float64 {
	if maxVal < minVal {
		minVal, maxVal = maxVal, minVal
	}

	span := maxVal - minVal
	dataSet := make([]float64, EntriesPerDay)

	for i := range dataSet {
		// Normalized time of day in [0, 1)
		t := float64(i) / float64(EntriesPerDay)

		var shape float64
		switch curveType {
		case CurveBell:
			// Peak mid-day, low overnight
			shape = math.Exp(-math.Pow((t-0.5)/0.18, 2))
		default:
			shape = 0.5 + 0.5*math.Sin(2*math.Pi*(t-0.25))
		}

		value := minVal + span*shape

		if noiseLevel > 0 {
			jitter := (g.rng.Float64()*2 - 1) * (noiseLevel / 100.0) * span
			value += jitter
		}

		// Clamp to the declared sensor range
		if value < minVal {
			value = minVal
		}
		if value > maxVal {
			value = maxVal
		}

		dataSet[i] = value
	}

	return dataSet
}

// GenerateTemperatureDataSet produces a daily indoor temperature dataset
func (g *DataGenerator) GenerateTemperatureDataSet(minVal, maxVal float64) []float64 {
	return g.GenerateDailyDataSet(CurveSine, minVal, maxVal, 5)
}

// GenerateHumidityDataSet produces a daily environment humidity dataset
func (g *DataGenerator) GenerateHumidityDataSet(minVal, maxVal float64) []float64 {
	return g.GenerateDailyDataSet(CurveSine, minVal, maxVal, 5)
}

// GeneratePressureDataSet produces a daily environment pressure dataset
func (g *DataGenerator) GeneratePressureDataSet(minVal, maxVal float64) []float64 {
	return g.GenerateDailyDataSet(CurveSine, minVal, maxVal, 2)
}

// GenerateCO2DataSet produces a daily CO2 dataset shaped like office
// occupancy: a bell curve peaking mid-day
func (g *DataGenerator) GenerateCO2DataSet(minVal, maxVal float64) []float64 {
	return g.GenerateDailyDataSet(CurveBell, minVal, maxVal, 15)
}
