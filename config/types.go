package config

// MainConfig names the sibling config files to load.
type MainConfig struct {
	AssistantConfig string `json:"assistant_config"`
	ServerConfig    string `json:"server_config"`
	RedisConfig     string `json:"redis_config"`
}

// AssistantConfig holds voice-assistant settings.
type AssistantConfig struct {
	Language     string  `json:"language"`     // BCP-47, e.g. "en-IN"
	Voice        string  `json:"voice"`        // TTS voice name
	SampleRate   int     `json:"sample_rate"`  // mic/playback rate in Hz
	QAWorkbook   string  `json:"qa_workbook"`  // spreadsheet with Question/Answer columns
	MatchCutoff  float64 `json:"match_cutoff"` // closest-match ratio cutoff
	GeminiModel  string  `json:"gemini_model"`
	GeminiAPIKey string  `json:"gemini_api_key"`
	UIEndpoint   string  `json:"ui_endpoint"` // attendance server base URL for /speak posts
	MusicDir     string  `json:"music_dir"`
}

// ServerConfig holds attendance web service settings.
type ServerConfig struct {
	Port                int     `json:"port"`
	ImageDir            string  `json:"image_dir"`      // reference face images
	StorageDriver       string  `json:"storage_driver"` // "sheet" or "sqlite"
	AttendancePath      string  `json:"attendance_path"`
	SimilarityThreshold float64 `json:"similarity_threshold"`
	CameraDevice        string  `json:"camera_device"`
	AWSRegion           string  `json:"aws_region"`
}

// RedisConfig holds cache connection settings. An empty Addr disables the
// cache and the service degrades to in-memory state.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// AllConfig bundles every loaded config file.
type AllConfig struct {
	Assistant *AssistantConfig
	Server    *ServerConfig
	Redis     *RedisConfig
}
