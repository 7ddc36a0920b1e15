package config

// ImportConfig contains startup CSV import configuration.
type ImportConfig struct {
	// CSVPath, when set, names a housing price index CSV file the service
	// imports once during startup. Empty (the default) disables the import.
	CSVPath string `env:"CSV_PATH" envDefault:""`
}
