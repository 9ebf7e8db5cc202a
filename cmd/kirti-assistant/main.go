// kirti-assistant is the voice assistant: it listens on the microphone,
// answers from the question workbook with a Gemini fallback, and speaks
// replies through Google Text-to-Speech.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kirtilabs/kirti/answers"
	"github.com/kirtilabs/kirti/assistant"
	"github.com/kirtilabs/kirti/audio"
	"github.com/kirtilabs/kirti/cache"
	"github.com/kirtilabs/kirti/config"
	"github.com/kirtilabs/kirti/interfaces"
	"github.com/kirtilabs/kirti/llm"
	logger "github.com/kirtilabs/kirti/log"
	"github.com/kirtilabs/kirti/stt"
	"github.com/kirtilabs/kirti/tts"
)

func main() {
	// 1. Load environment and configuration
	_ = godotenv.Load()
	cfg, err := config.LoadAllConfigs()
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	// 2. Initialize the cache and route logs through it
	c, err := cache.New(cfg.Redis)
	if err != nil {
		log.Printf("[BOOT] cache unavailable, continuing without it: %v", err)
	}
	var cacheIface cache.Cache
	if c != nil {
		cacheIface = c
		logger.Init(cache.NewLogWriter(c))
		defer c.Close()
	} else {
		logger.Init(nil)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Speech clients
	sttClient, err := stt.NewClient(ctx, cfg.Assistant.Language, cfg.Assistant.SampleRate)
	if err != nil {
		logger.Fatal("Failed to initialize speech-to-text", err)
	}
	defer sttClient.Close()

	ttsClient, err := tts.NewClient(ctx, cfg.Assistant.Language, cfg.Assistant.Voice, cfg.Assistant.SampleRate)
	if err != nil {
		logger.Fatal("Failed to initialize text-to-speech", err)
	}
	defer ttsClient.Close()

	// 4. Reply sources: workbook lookup with a Gemini fallback
	table, err := answers.LoadTable(cfg.Assistant.QAWorkbook)
	if err != nil {
		log.Printf("[BOOT] question workbook unavailable, using fallback only: %v", err)
		table = answers.NewTable(nil)
	}
	var fallback interfaces.ReplySource
	if cfg.Assistant.GeminiAPIKey != "" {
		gemini, err := llm.NewClient(ctx, cfg.Assistant.GeminiAPIKey, cfg.Assistant.GeminiModel)
		if err != nil {
			log.Printf("[BOOT] Gemini unavailable, workbook answers only: %v", err)
		} else {
			fallback = gemini
			defer gemini.Close()
		}
	}
	chain := answers.NewChain(table, cfg.Assistant.MatchCutoff, fallback)

	// 5. Audio in and out
	recorder, err := audio.NewRecorder(cfg.Assistant.SampleRate)
	if err != nil {
		logger.Fatal("Failed to open the microphone", err)
	}
	defer recorder.Close()
	playback := audio.NewPlayback()

	// 6. Run the interaction loop until a stop word or a signal
	a := assistant.New(cfg.Assistant, assistant.Deps{
		Listener: recorder,
		STT:      sttClient,
		Replies:  chain,
		TTS:      ttsClient,
		Player:   playback,
		Cache:    cacheIface,
	})

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	go func() {
		<-sc
		fmt.Println("\nShutting down.")
		cancel()
	}()

	if err := a.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Fatal("Assistant loop stopped", err)
	}
}
