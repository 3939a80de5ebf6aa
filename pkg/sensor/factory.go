package sensor

import (
	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/data"
	"iot-edge-controller/pkg/logger"
)

// sensorSpec describes one sensor to construct
type sensorSpec struct {
	name    string
	typeID  int
	dataSet func(*DataGenerator, config.SensorRange) []float64
	rng     config.SensorRange
}

// NewSensorTasks builds the full sensor set for this device. Dataset seeds are
// fixed so repeated runs produce the same daily curves. When the emulator is
// enabled, each task that fails to load falls back to its simulated variant
// with a warning; the fallback is never fatal.
func NewSensorTasks(settings config.DeviceSettings, sensors config.SensorsConfig, emulatorStatePath string) []Task {
	gen := NewDataGenerator(42)

	specs := []sensorSpec{
		{
			name:   data.TemperatureSensorName,
			typeID: data.TemperatureSensor,
			dataSet: func(g *DataGenerator, r config.SensorRange) []float64 {
				return g.GenerateTemperatureDataSet(r.Floor, r.Ceiling)
			},
			rng: rangeOrDefault(sensors.Temperature, LowNormalIndoorTemp, HiNormalIndoorTemp),
		},
		{
			name:   data.HumiditySensorName,
			typeID: data.HumiditySensor,
			dataSet: func(g *DataGenerator, r config.SensorRange) []float64 {
				return g.GenerateHumidityDataSet(r.Floor, r.Ceiling)
			},
			rng: rangeOrDefault(sensors.Humidity, LowNormalEnvHumidity, HiNormalEnvHumidity),
		},
		{
			name:   data.PressureSensorName,
			typeID: data.PressureSensor,
			dataSet: func(g *DataGenerator, r config.SensorRange) []float64 {
				return g.GeneratePressureDataSet(r.Floor, r.Ceiling)
			},
			rng: rangeOrDefault(sensors.Pressure, LowNormalEnvPressure, HiNormalEnvPressure),
		},
		{
			name:   data.CO2SensorName,
			typeID: data.CO2Sensor,
			dataSet: func(g *DataGenerator, r config.SensorRange) []float64 {
				return g.GenerateCO2DataSet(r.Floor, r.Ceiling)
			},
			rng: rangeOrDefault(sensors.CO2, LowNormalCO2, HiNormalCO2),
		},
	}

	tasks := make([]Task, 0, len(specs))
	for _, spec := range specs {
		if settings.UseEmulator {
			task, err := NewEmulatedTask(spec.name, spec.typeID, emulatorStatePath)
			if err == nil {
				logger.LogInfo("✅ Sensor %s using hardware emulator", spec.name)
				tasks = append(tasks, task)
				continue
			}
			logger.LogWarn("⚠️ %v - falling back to simulated %s", err, spec.name)
		}

		tasks = append(tasks, NewDatasetTask(spec.name, spec.typeID, spec.dataSet(gen, spec.rng)))
	}

	return tasks
}

// rangeOrDefault substitutes the built-in bounds when the config leaves a
// sensor range unset
func rangeOrDefault(r config.SensorRange, floor, ceiling float64) config.SensorRange {
	if r.Floor == 0 && r.Ceiling == 0 {
		return config.SensorRange{Floor: floor, Ceiling: ceiling}
	}
	return r
}
