package data

import (
	"encoding/json"
	"fmt"
)

// ToJSON serializes any telemetry entity to its wire representation
func ToJSON(entity interface{}) ([]byte, error) {
	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("error serializing entity: %w", err)
	}
	return payload, nil
}

// ReadingFromJSON decodes a Reading from its wire representation
func ReadingFromJSON(payload []byte) (*Reading, error) {
	var reading Reading
	if err := json.Unmarshal(payload, &reading); err != nil {
		return nil, fmt.Errorf("error decoding reading: %w", err)
	}
	return &reading, nil
}

// CommandFromJSON decodes a Command from its wire representation
func CommandFromJSON(payload []byte) (*Command, error) {
	var command Command
	if err := json.Unmarshal(payload, &command); err != nil {
		return nil, fmt.Errorf("error decoding command: %w", err)
	}
	return &command, nil
}

// PerformanceSampleFromJSON decodes a PerformanceSample from its wire representation
func PerformanceSampleFromJSON(payload []byte) (*PerformanceSample, error) {
	var sample PerformanceSample
	if err := json.Unmarshal(payload, &sample); err != nil {
		return nil, fmt.Errorf("error decoding performance sample: %w", err)
	}
	return &sample, nil
}
