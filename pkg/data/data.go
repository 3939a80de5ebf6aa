package data

import (
	"time"

	"github.com/google/uuid"
)

// Reading is a single timestamped sensor measurement. A new Reading supersedes
// the previous one for the same name; readings are never merged.
type Reading struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TypeID     int       `json:"typeId"`
	LocationID string    `json:"locationId"`
	Value      float64   `json:"value"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewReading creates a Reading with a fresh ID and timestamp
func NewReading(name string, typeID int, value float64) *Reading {
	return &Reading{
		ID:        uuid.NewString(),
		Name:      name,
		TypeID:    typeID,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// Command is a directive to change or report actuator state. A Command with
// the response flag set is terminal and is never re-routed as a request.
type Command struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	TypeID     int       `json:"typeId"`
	LocationID string    `json:"locationId"`
	Command    int       `json:"command"`
	Value      float64   `json:"value"`
	StateData  string    `json:"stateData,omitempty"`
	IsResponse bool      `json:"isResponse"`
	StatusCode int       `json:"statusCode"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewCommand creates a request Command with a fresh ID and timestamp
func NewCommand(typeID int, command int, value float64) *Command {
	return &Command{
		ID:        uuid.NewString(),
		Name:      NotSet,
		TypeID:    typeID,
		Command:   command,
		Value:     value,
		Timestamp: time.Now().UTC(),
	}
}

// Response builds the terminal response for this command: same payload,
// status code set, response flag enabled, fresh ID and timestamp.
func (c *Command) Response(statusCode int) *Command {
	resp := *c
	resp.ID = uuid.NewString()
	resp.StatusCode = statusCode
	resp.IsResponse = true
	resp.Timestamp = time.Now().UTC()
	return &resp
}

// PerformanceSample holds one system performance observation. Structurally
// analogous to Reading, produced by a separate periodic task.
type PerformanceSample struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CPUUtil   float64   `json:"cpuUtil"`
	MemUtil   float64   `json:"memUtil"`
	DiskUtil  float64   `json:"diskUtil"`
	Timestamp time.Time `json:"timestamp"`
}

// NewPerformanceSample creates a PerformanceSample with a fresh ID and timestamp
func NewPerformanceSample(cpu, mem, disk float64) *PerformanceSample {
	return &PerformanceSample{
		ID:        uuid.NewString(),
		Name:      SystemPerfName,
		CPUUtil:   cpu,
		MemUtil:   mem,
		DiskUtil:  disk,
		Timestamp: time.Now().UTC(),
	}
}
