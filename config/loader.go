package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Re-assign os.UserHomeDir to a variable so we can mock it in tests.
var osUserHomeDir = os.UserHomeDir

// configDir returns the path to the Kirti config directory, creating it if
// needed.
func configDir() (string, error) {
	home, err := osUserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get user home directory: %w", err)
	}
	dir := filepath.Join(home, "Kirti", "config")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("could not create config directory %s: %w", dir, err)
	}
	return dir, nil
}

// loadOrCreate reads a JSON config file, writing the provided defaults first
// when the file does not exist yet.
func loadOrCreate(dir, filename string, v interface{}) error {
	path := filepath.Join(dir, filename)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("could not marshal default config %s: %w", filename, err)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("could not write default config %s: %w", filename, err)
		}
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open config file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		return fmt.Errorf("could not decode config file %s: %w", path, err)
	}
	return nil
}

// LoadAllConfigs loads config.json and the files it names, creating each
// with defaults on first run. Secrets can be supplied via the environment
// (GEMINI_API_KEY, AWS_REGION) and take precedence over file values.
func LoadAllConfigs() (*AllConfig, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}

	main := &MainConfig{
		AssistantConfig: "assistant.json",
		ServerConfig:    "server.json",
		RedisConfig:     "redis.json",
	}
	if err := loadOrCreate(dir, "config.json", main); err != nil {
		return nil, err
	}

	assistant := &AssistantConfig{
		Language:    "en-IN",
		Voice:       "en-IN-Wavenet-B",
		SampleRate:  16000,
		QAWorkbook:  "college_questions.xlsx",
		MatchCutoff: 0.7,
		GeminiModel: "gemini-1.5-flash",
		UIEndpoint:  "http://localhost:5005",
	}
	if err := loadOrCreate(dir, main.AssistantConfig, assistant); err != nil {
		return nil, err
	}

	server := &ServerConfig{
		Port:                5005,
		ImageDir:            "images",
		StorageDriver:       "sheet",
		AttendancePath:      "attendance.xlsx",
		SimilarityThreshold: 85,
		CameraDevice:        "/dev/video0",
		AWSRegion:           "ap-south-1",
	}
	if err := loadOrCreate(dir, main.ServerConfig, server); err != nil {
		return nil, err
	}

	redis := &RedisConfig{Addr: "localhost:6379"}
	if err := loadOrCreate(dir, main.RedisConfig, redis); err != nil {
		return nil, err
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		assistant.GeminiAPIKey = key
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		server.AWSRegion = region
	}

	return &AllConfig{Assistant: assistant, Server: server, Redis: redis}, nil
}
