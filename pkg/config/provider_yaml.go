package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into a temporary struct with YAML tags
	var yamlConfig struct {
		Feeds       []FeedYAML       `yaml:"feeds"`
		Penguins    *PenguinsYAML    `yaml:"penguins,omitempty"`
		Storage     StorageYAML      `yaml:"storage,omitempty"`
		Controllers []ControllerYAML `yaml:"controllers,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Feeds:       make([]FeedData, len(yamlConfig.Feeds)),
		Controllers: make([]ControllerData, len(yamlConfig.Controllers)),
	}

	for i, feed := range yamlConfig.Feeds {
		config.Feeds[i] = FeedData{
			Name:         feed.Name,
			Type:         feed.Type,
			IntervalSecs: feed.IntervalSecs,
			Capacity:     feed.Capacity,
			MinTemp:      feed.MinTemp,
			MaxTemp:      feed.MaxTemp,
			SerialDevice: feed.SerialDevice,
			Baud:         feed.Baud,
		}
	}

	if yamlConfig.Penguins != nil {
		config.Penguins = &PenguinsData{
			Dataset:      yamlConfig.Penguins.Dataset,
			Capacity:     yamlConfig.Penguins.Capacity,
			SampleSize:   yamlConfig.Penguins.SampleSize,
			IntervalSecs: yamlConfig.Penguins.IntervalSecs,
		}
	}

	config.Storage = StorageData{}
	if yamlConfig.Storage.Archive != nil {
		config.Storage.Archive = &ArchiveData{
			ConnectionString: yamlConfig.Storage.Archive.ConnectionString,
		}
	}
	if yamlConfig.Storage.LiveTCP != nil {
		config.Storage.LiveTCP = &LiveTCPData{
			ListenAddr:   yamlConfig.Storage.LiveTCP.ListenAddr,
			Port:         yamlConfig.Storage.LiveTCP.Port,
			IntervalSecs: yamlConfig.Storage.LiveTCP.IntervalSecs,
		}
	}

	for i, controller := range yamlConfig.Controllers {
		config.Controllers[i] = ControllerData{
			Type: controller.Type,
		}

		if controller.RESTServer != nil {
			config.Controllers[i].RESTServer = &RESTServerData{
				Cert:       controller.RESTServer.Cert,
				Key:        controller.RESTServer.Key,
				Port:       controller.RESTServer.Port,
				ListenAddr: controller.RESTServer.ListenAddr,
				GRPCHealth: controller.RESTServer.GRPCHealth,
				PageTitle:  controller.RESTServer.PageTitle,
			}
		}
	}

	config.ApplyDefaults()

	y.config = config
	return config, nil
}

// GetFeeds returns feed configurations
func (y *YAMLProvider) GetFeeds() ([]FeedData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Feeds, nil
}

// GetStorageConfig returns storage configuration
func (y *YAMLProvider) GetStorageConfig() (*StorageData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Storage, nil
}

// GetControllers returns controller configurations
func (y *YAMLProvider) GetControllers() ([]ControllerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Controllers, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format

type FeedYAML struct {
	Name         string  `yaml:"name"`
	Type         string  `yaml:"type,omitempty"`
	IntervalSecs int     `yaml:"interval,omitempty"`
	Capacity     int     `yaml:"capacity,omitempty"`
	MinTemp      float64 `yaml:"min-temp,omitempty"`
	MaxTemp      float64 `yaml:"max-temp,omitempty"`
	SerialDevice string  `yaml:"serialdevice,omitempty"`
	Baud         int     `yaml:"baud,omitempty"`
}

type PenguinsYAML struct {
	Dataset      string `yaml:"dataset"`
	Capacity     int    `yaml:"capacity,omitempty"`
	SampleSize   int    `yaml:"sample-size,omitempty"`
	IntervalSecs int    `yaml:"interval,omitempty"`
}

type StorageYAML struct {
	Archive *ArchiveYAML `yaml:"archive,omitempty"`
	LiveTCP *LiveTCPYAML `yaml:"livetcp,omitempty"`
}

type ArchiveYAML struct {
	ConnectionString string `yaml:"connection-string"`
}

type LiveTCPYAML struct {
	ListenAddr   string `yaml:"listen-addr,omitempty"`
	Port         int    `yaml:"port,omitempty"`
	IntervalSecs int    `yaml:"interval,omitempty"`
}

type ControllerYAML struct {
	Type       string          `yaml:"type,omitempty"`
	RESTServer *RESTServerYAML `yaml:"rest,omitempty"`
}

type RESTServerYAML struct {
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	ListenAddr string `yaml:"listen-addr,omitempty"`
	GRPCHealth bool   `yaml:"grpc-health,omitempty"`
	PageTitle  string `yaml:"page-title,omitempty"`
}
