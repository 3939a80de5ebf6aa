package sensor

import (
	"math/rand"
	"sync"

	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/logger"
)

// Task produces one Reading per invocation. Implementations are polymorphic
// over dataset-backed, distribution-backed and hardware-emulated variants.
type Task interface {
	// GenerateTelemetry produces the next Reading for this sensor
	GenerateTelemetry() *data.Reading

	// TelemetryValue returns the latest value, generating one first if no
	// reading exists yet
	TelemetryValue() float64

	// LatestTelemetry returns the latest Reading, generating one first if no
	// reading exists yet
	LatestTelemetry() *data.Reading

	Name() string
	TypeID() int
}

// SimTask is a simulated sensor backed by either a pre-generated dataset
// (cyclic) or a uniform random distribution over [min, max]
type SimTask struct {
	name    string
	typeID  int
	dataSet []float64
	index   int
	minVal  float64
	maxVal  float64

	latest *data.Reading
	mu     sync.Mutex
}

// NewDatasetTask creates a sensor task that cycles through a pre-generated
// dataset, wrapping deterministically
func NewDatasetTask(name string, typeID int, dataSet []float64) *SimTask {
	if len(dataSet) == 0 {
		logger.LogWarn("⚠️ Empty dataset for sensor %s; falling back to random generation", name)
	}
	return &SimTask{
		name:    name,
		typeID:  typeID,
		dataSet: dataSet,
		minVal:  0.0,
		maxVal:  1000.0,
	}
}

// NewRandomTask creates a sensor task that draws values uniformly from
// [minVal, maxVal]
func NewRandomTask(name string, typeID int, minVal, maxVal float64) *SimTask {
	return &SimTask{
		name:   name,
		typeID: typeID,
		minVal: minVal,
		maxVal: maxVal,
	}
}

// GenerateTelemetry produces the next Reading: dataset[index] with wrap-around,
// or a uniform random draw when no dataset is configured
func (t *SimTask) GenerateTelemetry() *data.Reading {
	t.mu.Lock()
	defer t.mu.Unlock()

	var value float64
	if len(t.dataSet) > 0 {
		value = t.dataSet[t.index]
		t.index = (t.index + 1) % len(t.dataSet)
	} else {
		value = t.minVal + rand.Float64()*(t.maxVal-t.minVal)
	}

	reading := data.NewReading(t.name, t.typeID, value)
	t.latest = reading

	logger.LogTrace("🔍 Generated telemetry for %s: value=%.3f", t.name, value)
	return reading
}

// TelemetryValue returns the latest value with generate-on-first-access semantics
func (t *SimTask) TelemetryValue() float64 {
	return t.LatestTelemetry().Value
}

// LatestTelemetry returns the latest Reading with generate-on-first-access semantics
func (t *SimTask) LatestTelemetry() *data.Reading {
	t.mu.Lock()
	latest := t.latest
	t.mu.Unlock()

	if latest == nil {
		return t.GenerateTelemetry()
	}
	return latest
}

// Name returns the sensor name
func (t *SimTask) Name() string {
	return t.name
}

// TypeID returns the sensor type code
func (t *SimTask) TypeID() int {
	return t.typeID
}
