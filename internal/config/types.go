package config

// Config holds all simchain configuration.
type Config struct {
	DataDir      string  `json:"data_dir"      mapstructure:"data_dir"`
	DefaultChain string  `json:"default_chain" mapstructure:"default_chain"` // empty: first chain in the chains file
	ChainsFile   string  `json:"chains_file"   mapstructure:"chains_file"`   // empty: built-in chains
	KeyStorage   string  `json:"key_storage"   mapstructure:"key_storage"`   // "file" | "keychain"
	OnRampAmount float64 `json:"onramp_amount" mapstructure:"onramp_amount"`
	HistoryLimit int     `json:"history_limit" mapstructure:"history_limit"`
	ListenAddr   string  `json:"listen_addr"   mapstructure:"listen_addr"`
	LogLevel     string  `json:"log_level"     mapstructure:"log_level"`

	// internal: config dir path used for Save()
	configDir string
}

// Key storage modes.
const (
	KeyStorageFile     = "file"
	KeyStorageKeychain = "keychain"
)
