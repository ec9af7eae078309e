package station

import "fmt"

// SlotConfig describes one charging bay.
type SlotConfig struct {
	ID      string  `json:"id" yaml:"id"`
	PowerKW float64 `json:"power_kw" yaml:"power_kw"`
}

// Config defines the station layout and the actor queue sizing.
type Config struct {
	ID       string       `json:"id" yaml:"id"`
	Location string       `json:"location" yaml:"location"`
	Slots    []SlotConfig `json:"slots" yaml:"slots"`
	// CommandQueueDepth bounds the actor mailbox. Submissions beyond this
	// depth are rejected with ErrStationBusy instead of queuing unboundedly.
	CommandQueueDepth int `json:"command_queue_depth" yaml:"command_queue_depth"`
}

// SetDefaults applies sane defaults for a demo station.
func (c *Config) SetDefaults() {
	if c.ID == "" {
		c.ID = "CS-001"
	}
	if c.CommandQueueDepth <= 0 {
		c.CommandQueueDepth = 64
	}
	if len(c.Slots) == 0 {
		c.Slots = []SlotConfig{
			{ID: "SLOT-A", PowerKW: 50},
			{ID: "SLOT-B", PowerKW: 50},
			{ID: "SLOT-C", PowerKW: 150},
		}
	}
}

// Validate checks the slot layout.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Slots))
	for _, s := range c.Slots {
		if s.ID == "" {
			return fmt.Errorf("slot id is required")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate slot id %s", s.ID)
		}
		seen[s.ID] = true
		if s.PowerKW <= 0 {
			return fmt.Errorf("slot %s: power rating must be positive", s.ID)
		}
	}
	return nil
}
