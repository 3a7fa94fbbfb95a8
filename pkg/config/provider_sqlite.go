package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	p := &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}

	if err := p.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return p, nil
}

// LoadConfig loads the complete configuration from the SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	feeds, err := s.GetFeeds()
	if err != nil {
		return nil, fmt.Errorf("failed to load feeds: %w", err)
	}
	config.Feeds = feeds

	penguins, err := s.getPenguins()
	if err != nil {
		return nil, fmt.Errorf("failed to load penguin config: %w", err)
	}
	config.Penguins = penguins

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	config.ApplyDefaults()
	return config, nil
}

// GetFeeds returns feed configurations
func (s *SQLiteProvider) GetFeeds() ([]FeedData, error) {
	rows, err := s.db.Query(`
		SELECT name, type, interval_secs, capacity, min_temp, max_temp,
		       COALESCE(serial_device, ''), baud
		FROM feeds ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feeds: %w", err)
	}
	defer rows.Close()

	var feeds []FeedData
	for rows.Next() {
		var f FeedData
		if err := rows.Scan(&f.Name, &f.Type, &f.IntervalSecs, &f.Capacity,
			&f.MinTemp, &f.MaxTemp, &f.SerialDevice, &f.Baud); err != nil {
			return nil, fmt.Errorf("failed to scan feed row: %w", err)
		}
		feeds = append(feeds, f)
	}
	return feeds, rows.Err()
}

// GetStorageConfig returns storage configuration
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	var connectionString string
	err := s.db.QueryRow(`SELECT connection_string FROM storage_archive WHERE id = 1`).Scan(&connectionString)
	switch {
	case err == sql.ErrNoRows:
		// Archive not configured
	case err != nil:
		return nil, fmt.Errorf("failed to query archive storage: %w", err)
	default:
		storage.Archive = &ArchiveData{ConnectionString: connectionString}
	}

	var livetcp LiveTCPData
	err = s.db.QueryRow(`SELECT COALESCE(listen_addr, ''), port, interval_secs FROM storage_livetcp WHERE id = 1`).
		Scan(&livetcp.ListenAddr, &livetcp.Port, &livetcp.IntervalSecs)
	switch {
	case err == sql.ErrNoRows:
		// Live TCP push not configured
	case err != nil:
		return nil, fmt.Errorf("failed to query livetcp storage: %w", err)
	default:
		storage.LiveTCP = &livetcp
	}

	return storage, nil
}

// GetControllers returns controller configurations
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	rows, err := s.db.Query(`
		SELECT COALESCE(cert, ''), COALESCE(key, ''), port,
		       COALESCE(listen_addr, ''), grpc_health, COALESCE(page_title, '')
		FROM rest_controllers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var r RESTServerData
		var grpcHealth int
		if err := rows.Scan(&r.Cert, &r.Key, &r.Port, &r.ListenAddr, &grpcHealth, &r.PageTitle); err != nil {
			return nil, fmt.Errorf("failed to scan controller row: %w", err)
		}
		r.GRPCHealth = grpcHealth != 0
		controllers = append(controllers, ControllerData{Type: "rest", RESTServer: &r})
	}
	return controllers, rows.Err()
}

// SaveConfig replaces the stored configuration with the given one
func (s *SQLiteProvider) SaveConfig(config *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"feeds", "penguins", "storage_archive", "storage_livetcp", "rest_controllers"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, f := range config.Feeds {
		_, err := tx.Exec(`
			INSERT INTO feeds (name, type, interval_secs, capacity, min_temp, max_temp, serial_device, baud)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.Name, f.Type, f.IntervalSecs, f.Capacity, f.MinTemp, f.MaxTemp, f.SerialDevice, f.Baud)
		if err != nil {
			return fmt.Errorf("failed to insert feed %s: %w", f.Name, err)
		}
	}

	if config.Penguins != nil {
		_, err := tx.Exec(`
			INSERT INTO penguins (id, dataset, capacity, sample_size, interval_secs)
			VALUES (1, ?, ?, ?, ?)`,
			config.Penguins.Dataset, config.Penguins.Capacity,
			config.Penguins.SampleSize, config.Penguins.IntervalSecs)
		if err != nil {
			return fmt.Errorf("failed to insert penguin config: %w", err)
		}
	}

	if config.Storage.Archive != nil {
		_, err := tx.Exec(`INSERT INTO storage_archive (id, connection_string) VALUES (1, ?)`,
			config.Storage.Archive.ConnectionString)
		if err != nil {
			return fmt.Errorf("failed to insert archive storage: %w", err)
		}
	}

	if config.Storage.LiveTCP != nil {
		_, err := tx.Exec(`INSERT INTO storage_livetcp (id, listen_addr, port, interval_secs) VALUES (1, ?, ?, ?)`,
			config.Storage.LiveTCP.ListenAddr, config.Storage.LiveTCP.Port, config.Storage.LiveTCP.IntervalSecs)
		if err != nil {
			return fmt.Errorf("failed to insert livetcp storage: %w", err)
		}
	}

	for _, c := range config.Controllers {
		if c.RESTServer == nil {
			continue
		}
		grpcHealth := 0
		if c.RESTServer.GRPCHealth {
			grpcHealth = 1
		}
		_, err := tx.Exec(`
			INSERT INTO rest_controllers (cert, key, port, listen_addr, grpc_health, page_title)
			VALUES (?, ?, ?, ?, ?, ?)`,
			c.RESTServer.Cert, c.RESTServer.Key, c.RESTServer.Port,
			c.RESTServer.ListenAddr, grpcHealth, c.RESTServer.PageTitle)
		if err != nil {
			return fmt.Errorf("failed to insert REST controller: %w", err)
		}
	}

	return tx.Commit()
}

// IsReadOnly returns false; the SQLite backend supports SaveConfig
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}

func (s *SQLiteProvider) getPenguins() (*PenguinsData, error) {
	var p PenguinsData
	err := s.db.QueryRow(`SELECT dataset, capacity, sample_size, interval_secs FROM penguins WHERE id = 1`).
		Scan(&p.Dataset, &p.Capacity, &p.SampleSize, &p.IntervalSecs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query penguin config: %w", err)
	}
	return &p, nil
}

func (s *SQLiteProvider) ensureSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS feeds (
			name TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			interval_secs INTEGER NOT NULL DEFAULT 0,
			capacity INTEGER NOT NULL DEFAULT 0,
			min_temp REAL NOT NULL DEFAULT 0,
			max_temp REAL NOT NULL DEFAULT 0,
			serial_device TEXT,
			baud INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS penguins (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			dataset TEXT NOT NULL,
			capacity INTEGER NOT NULL DEFAULT 0,
			sample_size INTEGER NOT NULL DEFAULT 0,
			interval_secs INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS storage_archive (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			connection_string TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS storage_livetcp (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			listen_addr TEXT,
			port INTEGER NOT NULL DEFAULT 0,
			interval_secs INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS rest_controllers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cert TEXT,
			key TEXT,
			port INTEGER NOT NULL DEFAULT 0,
			listen_addr TEXT,
			grpc_health INTEGER NOT NULL DEFAULT 0,
			page_title TEXT
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}
