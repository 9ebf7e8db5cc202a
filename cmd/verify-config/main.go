// verify-config checks the JSON files under ~/Kirti/config for missing
// files, malformed JSON, unknown fields, and empty values.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/kirtilabs/kirti/config"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

// ConfigSchema represents the expected structure of a config file.
type ConfigSchema struct {
	FileName string
	Path     string
	Model    interface{}
}

func main() {
	fmt.Printf("%s--- Kirti Config Verifier ---%s\n", ColorBlue, ColorReset)

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Printf("%s[FATAL]%s Could not determine user home directory: %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}
	configDir := filepath.Join(home, "Kirti", "config")

	schemas := []ConfigSchema{
		{
			FileName: "config.json",
			Path:     filepath.Join(configDir, "config.json"),
			Model:    config.MainConfig{},
		},
		{
			FileName: "assistant.json",
			Path:     filepath.Join(configDir, "assistant.json"),
			Model:    config.AssistantConfig{},
		},
		{
			FileName: "server.json",
			Path:     filepath.Join(configDir, "server.json"),
			Model:    config.ServerConfig{},
		},
		{
			FileName: "redis.json",
			Path:     filepath.Join(configDir, "redis.json"),
			Model:    config.RedisConfig{},
		},
	}

	allChecksPassed := true
	for _, schema := range schemas {
		fmt.Printf("\nVerifying %s'%s'%s...\n", ColorBlue, schema.FileName, ColorReset)
		if !verifyConfigFile(schema) {
			allChecksPassed = false
		}
	}

	fmt.Println("\n--------------------------")
	if allChecksPassed {
		fmt.Printf("%s✅ All configuration files seem correct.%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s❌ Some issues were found in the configuration.%s\n", ColorRed, ColorReset)
		os.Exit(1)
	}
}

func verifyConfigFile(schema ConfigSchema) bool {
	// 1. Check file existence
	content, err := os.ReadFile(schema.Path)
	if err != nil {
		fmt.Printf("  %s[FAIL]%s File not found or not readable: %v\n", ColorRed, ColorReset, err)
		return false
	}
	fmt.Printf("  %s[OK]%s File exists and is readable.\n", ColorGreen, ColorReset)

	// 2. Check for valid JSON and unknown fields
	decoder := json.NewDecoder(bytes.NewReader(content))
	decoder.DisallowUnknownFields()

	modelType := reflect.TypeOf(schema.Model)
	modelInstance := reflect.New(modelType).Interface()

	if err := decoder.Decode(modelInstance); err != nil {
		fmt.Printf("  %s[FAIL]%s JSON is invalid or contains unexpected fields: %v\n", ColorRed, ColorReset, err)
		return false
	}
	fmt.Printf("  %s[OK]%s JSON is valid and all fields are recognized.\n", ColorGreen, ColorReset)

	// 3. Warn about fields left at their zero value
	val := reflect.ValueOf(modelInstance).Elem()
	typ := val.Type()
	missingFields := []string{}
	for i := 0; i < val.NumField(); i++ {
		if val.Field(i).IsZero() {
			missingFields = append(missingFields, typ.Field(i).Name)
		}
	}

	if len(missingFields) > 0 {
		fmt.Printf("  %s[WARN]%s The following fields are present but have empty/default values: %v\n", ColorYellow, ColorReset, missingFields)
	} else {
		fmt.Printf("  %s[OK]%s All required fields have non-empty values.\n", ColorGreen, ColorReset)
	}

	return true
}
