package data

// Sensor type codes
const (
	DefaultSensorType = 0
	HumiditySensor    = 1
	PressureSensor    = 2
	TemperatureSensor = 3
	CO2Sensor         = 4

	SystemPerfType = 9000
)

// Actuator type codes
const (
	DefaultActuatorType = 0
	HvacActuator        = 1
	HumidifierActuator  = 2
	VentilationActuator = 3
	AirPurifierActuator = 4
	LedDisplayActuator  = 100
)

// Command codes
const (
	CommandOff = 0
	CommandOn  = 1
)

// Status codes returned by actuator side effects
const (
	StatusOK    = 0
	StatusError = -1
)

// Well-known entity names
const (
	NotSet = "Not Set"

	TemperatureSensorName = "TempSensor"
	HumiditySensorName    = "HumiditySensor"
	PressureSensorName    = "PressureSensor"
	CO2SensorName         = "CO2Sensor"

	HvacActuatorName        = "HvacActuator"
	HumidifierActuatorName  = "HumidifierActuator"
	VentilationActuatorName = "VentilationActuator"
	AirPurifierActuatorName = "AirPurifierActuator"
	LedDisplayActuatorName  = "LedDisplayActuator"

	SystemPerfName = "SystemPerfSample"
)
