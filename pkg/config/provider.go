// Package config defines the daemon configuration model and its providers.
package config

// Defaults applied when the configuration leaves a value unset.
const (
	DefaultFeedIntervalSecs    = 10
	DefaultFeedCapacity        = 5
	DefaultPenguinCapacity     = 10
	DefaultPenguinSampleSize   = 5
	DefaultPenguinIntervalSecs = 10
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetFeeds() ([]FeedData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Feeds       []FeedData       `json:"feeds"`
	Penguins    *PenguinsData    `json:"penguins,omitempty"`
	Storage     StorageData      `json:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty"`
}

// FeedData holds configuration specific to a reading feed
type FeedData struct {
	Name         string  `json:"name"`
	Type         string  `json:"type,omitempty"`
	IntervalSecs int     `json:"interval_secs,omitempty"`
	Capacity     int     `json:"capacity,omitempty"`
	MinTemp      float64 `json:"min_temp,omitempty"`
	MaxTemp      float64 `json:"max_temp,omitempty"`
	SerialDevice string  `json:"serial_device,omitempty"`
	Baud         int     `json:"baud,omitempty"`
}

// PenguinsData holds configuration for the penguin sampler
type PenguinsData struct {
	Dataset      string `json:"dataset"`
	Capacity     int    `json:"capacity,omitempty"`
	SampleSize   int    `json:"sample_size,omitempty"`
	IntervalSecs int    `json:"interval_secs,omitempty"`
}

// StorageData holds the configuration for the optional storage backends
type StorageData struct {
	Archive *ArchiveData `json:"archive,omitempty"`
	LiveTCP *LiveTCPData `json:"livetcp,omitempty"`
}

// ArchiveData configures the PostgreSQL/TimescaleDB reading archive
type ArchiveData struct {
	ConnectionString string `json:"connection_string"`
}

// LiveTCPData configures the TCP snapshot push server
type LiveTCPData struct {
	ListenAddr   string `json:"listen_addr,omitempty"`
	Port         int    `json:"port,omitempty"`
	IntervalSecs int    `json:"interval_secs,omitempty"`
}

// ControllerData holds the configuration for controller backends
type ControllerData struct {
	Type       string          `json:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty"`
}

// RESTServerData configures the REST API controller
type RESTServerData struct {
	Cert       string `json:"cert,omitempty"`
	Key        string `json:"key,omitempty"`
	Port       int    `json:"port,omitempty"`
	ListenAddr string `json:"listen_addr,omitempty"`
	GRPCHealth bool   `json:"grpc_health,omitempty"`
	PageTitle  string `json:"page_title,omitempty"`
}

// ApplyDefaults fills unset fields with the documented defaults. Providers
// call this after loading so the rest of the daemon never re-checks for
// zero values.
func (c *ConfigData) ApplyDefaults() {
	for i := range c.Feeds {
		if c.Feeds[i].IntervalSecs == 0 {
			c.Feeds[i].IntervalSecs = DefaultFeedIntervalSecs
		}
		if c.Feeds[i].Capacity == 0 {
			c.Feeds[i].Capacity = DefaultFeedCapacity
		}
	}
	if c.Penguins != nil {
		if c.Penguins.Capacity == 0 {
			c.Penguins.Capacity = DefaultPenguinCapacity
		}
		if c.Penguins.SampleSize == 0 {
			c.Penguins.SampleSize = DefaultPenguinSampleSize
		}
		if c.Penguins.IntervalSecs == 0 {
			c.Penguins.IntervalSecs = DefaultPenguinIntervalSecs
		}
	}
	if c.Storage.LiveTCP != nil && c.Storage.LiveTCP.IntervalSecs == 0 {
		c.Storage.LiveTCP.IntervalSecs = DefaultFeedIntervalSecs
	}
}
