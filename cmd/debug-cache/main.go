// debug-cache dumps every key the service keeps in Redis: the latest UI
// message, the matched-user snapshot, recent transcripts and log lines.
package main

import (
	"fmt"
	"log"

	"github.com/kirtilabs/kirti/cache"
	"github.com/kirtilabs/kirti/config"
)

func main() {
	cfg, err := config.LoadAllConfigs()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	debugCache, err := cache.NewDebug(cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	defer debugCache.Close()

	keys, err := debugCache.GetAllKeys()
	if err != nil {
		log.Fatalf("Failed to get keys: %v", err)
	}
	if len(keys) == 0 {
		fmt.Println("Cache is empty.")
		return
	}

	for _, key := range keys {
		fmt.Printf("\n--- Key: %s ---\n", key)
		keyType, err := debugCache.GetType(key)
		if err != nil {
			log.Printf("Failed to get type for key %s: %v", key, err)
			continue
		}
		fmt.Printf("Type: %s\n", keyType)

		switch keyType {
		case "string":
			val, err := debugCache.Get(key)
			if err != nil {
				log.Printf("Failed to get string value for key %s: %v", key, err)
				continue
			}
			fmt.Printf("Value: %s\n", val)
		case "list":
			vals, err := debugCache.LRange(key, 0, -1)
			if err != nil {
				log.Printf("Failed to get list value for key %s: %v", key, err)
				continue
			}
			fmt.Printf("Values:\n")
			for _, val := range vals {
				fmt.Printf("  - %s\n", val)
			}
		default:
			fmt.Println("Value: (unsupported type for printing)")
		}
	}
}
