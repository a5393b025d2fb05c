package config

import (
	"bytes"
	"errors"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// File is a simulator profile.
type File struct {
	Controller   Controller   `yaml:"controller"`
	Engine       Engine       `yaml:"engine"`
	Capabilities Capabilities `yaml:"capabilities"`
	Conflict     *Conflict    `yaml:"conflict,omitempty"`
	EEs          []EE         `yaml:"ees"`
	Routes       Routes       `yaml:"routes"`
}

// Controller describes the simulated NFC controller.
type Controller struct {
	// Name labels metrics and log output.
	Name string `yaml:"name"`

	// TableSize is the listen mode routing table capacity in bytes.
	TableSize int `yaml:"table_size"`

	// MaxPayload is the largest routing command payload.
	MaxPayload int `yaml:"max_payload"`

	// Latency delays every simulated response.
	Latency time.Duration `yaml:"latency"`

	// RejectRouting makes the controller answer routing commands with
	// a failure status.
	RejectRouting bool `yaml:"reject_routing"`
}

// Engine holds engine tuning. Zero values keep the engine defaults.
type Engine struct {
	Debounce          time.Duration `yaml:"debounce"`
	DiscoveryTimeout  time.Duration `yaml:"discovery_timeout"`
	MaxEE             int           `yaml:"max_ee"`
	MaxObservers      int           `yaml:"max_observers"`
	DynamicAIDSizing  bool          `yaml:"dynamic_aid_sizing"`
	ClearOnDeactivate bool          `yaml:"clear_on_deactivate"`
}

// Capabilities are the controller features.
type Capabilities struct {
	// Screen is none, legacy or full. Empty means full.
	Screen            string   `yaml:"screen"`
	ISO7816           bool     `yaml:"iso7816"`
	RouteBlockControl bool     `yaml:"route_block_control"`
	ProvisionMode     bool     `yaml:"provision_mode"`
	RoutingOrder      []string `yaml:"routing_order,omitempty"`
}

// Conflict enables technology conflict resolution in favor of Preferred.
type Conflict struct {
	Preferred uint8 `yaml:"preferred"`
}

// EE is an NFCEE the controller reports at discovery.
type EE struct {
	ID         uint8    `yaml:"id"`
	Status     string   `yaml:"status,omitempty"`
	Interfaces []string `yaml:"interfaces"`
}

// Routes are applied in order once discovery completes.
type Routes struct {
	Tech  []PowerRoute `yaml:"tech,omitempty"`
	Proto []PowerRoute `yaml:"proto,omitempty"`
	AID   []AIDRoute   `yaml:"aid,omitempty"`
	APDU  []APDURoute  `yaml:"apdu,omitempty"`
}

// PowerRoute is a technology or protocol route. Each field lists the
// technologies (or protocols) routed in that power state, e.g. "A|B".
type PowerRoute struct {
	Target        uint8  `yaml:"target"`
	SwitchOn      string `yaml:"switch_on,omitempty"`
	SwitchOff     string `yaml:"switch_off,omitempty"`
	BatteryOff    string `yaml:"battery_off,omitempty"`
	ScreenLock    string `yaml:"screen_lock,omitempty"`
	ScreenOff     string `yaml:"screen_off,omitempty"`
	ScreenOffLock string `yaml:"screen_off_lock,omitempty"`
}

// AIDRoute routes one AID.
type AIDRoute struct {
	Target uint8  `yaml:"target"`
	AID    string `yaml:"aid"`
	Power  string `yaml:"power"`

	// Match is exact (default), prefix or subset.
	Match string `yaml:"match,omitempty"`
}

// APDURoute routes one APDU pattern.
type APDURoute struct {
	Target  uint8  `yaml:"target"`
	Pattern string `yaml:"pattern"`
	Mask    string `yaml:"mask"`
	Power   string `yaml:"power"`
}

// LoadError reports a profile that could not be read or parsed.
type LoadError struct {
	// File is the profile path, empty when parsing bytes.
	File string

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse decodes and validates a profile. Unknown keys are rejected.
func Parse(data []byte) (*File, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if err := f.Validate(); err != nil {
		return nil, &LoadError{Message: "invalid profile", Cause: err}
	}
	return &f, nil
}

// Load reads and parses a profile file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}
	f, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
		}
		return nil, err
	}
	return f, nil
}

// Marshal encodes the profile as YAML.
func (f *File) Marshal() ([]byte, error) {
	return yaml.Marshal(f)
}
