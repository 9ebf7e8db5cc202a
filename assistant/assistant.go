// Package assistant runs the voice interaction loop: listen for an
// utterance, transcribe it, resolve a reply and speak it back. Spoken text
// is also relayed to the attendance UI so the on-screen avatar stays in
// sync with the audio.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/kirtilabs/kirti/cache"
	"github.com/kirtilabs/kirti/config"
	"github.com/kirtilabs/kirti/interfaces"
)

const (
	introMessage   = "I am your smart assistant. Ask me anything."
	goodbyeMessage = "Goodbye! Have a nice day!"

	uiPostTimeout = 2 * time.Second
)

// Listener captures one utterance of microphone audio.
type Listener interface {
	Listen(ctx context.Context) ([]byte, error)
}

// Player plays back synthesized PCM audio.
type Player interface {
	Play(data []byte, sampleRate int) error
}

// Deps are the assistant's collaborators. Cache may be nil.
type Deps struct {
	Listener Listener
	STT      interfaces.SpeechToText
	Replies  interfaces.ReplySource
	TTS      interfaces.Synthesizer
	Player   Player
	Cache    cache.Cache
}

// Assistant owns the interaction loop.
type Assistant struct {
	listener Listener
	stt      interfaces.SpeechToText
	replies  interfaces.ReplySource
	tts      interfaces.Synthesizer
	player   Player
	cache    cache.Cache

	musicDir   string
	uiEndpoint string
	httpClient *http.Client

	now  func() time.Time
	open func(target string) error
}

// New builds an assistant from config and collaborators.
func New(cfg *config.AssistantConfig, deps Deps) *Assistant {
	return &Assistant{
		listener:   deps.Listener,
		stt:        deps.STT,
		replies:    deps.Replies,
		tts:        deps.TTS,
		player:     deps.Player,
		cache:      deps.Cache,
		musicDir:   cfg.MusicDir,
		uiEndpoint: strings.TrimRight(cfg.UIEndpoint, "/"),
		httpClient: &http.Client{Timeout: uiPostTimeout},
		now:        time.Now,
		open:       openWithDesktop,
	}
}

// Run greets the user and loops until they say stop or the context is
// cancelled. Per-cycle failures are logged and the loop continues.
func (a *Assistant) Run(ctx context.Context) error {
	a.Speak(ctx, Greeting(a.now().Hour()))
	a.Speak(ctx, introMessage)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		stop, err := a.Cycle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[ASSISTANT] cycle failed: %v", err)
			continue
		}
		if stop {
			return nil
		}
	}
}

// Cycle runs one listen-transcribe-reply round. A window with no speech is
// not an error; the caller just listens again.
func (a *Assistant) Cycle(ctx context.Context) (bool, error) {
	pcm, err := a.listener.Listen(ctx)
	if errors.Is(err, interfaces.ErrNoSpeech) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not capture audio: %w", err)
	}

	query, err := a.stt.Transcribe(ctx, pcm)
	if errors.Is(err, interfaces.ErrNoSpeech) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("could not transcribe audio: %w", err)
	}

	log.Printf("[ASSISTANT] heard: %q", query)
	if a.cache != nil {
		if err := a.cache.AddTranscript(query); err != nil {
			log.Printf("[ASSISTANT] transcript not cached: %v", err)
		}
	}

	return a.Handle(ctx, query)
}

// Handle dispatches one transcribed query. It returns true when the user
// asked the assistant to stop.
func (a *Assistant) Handle(ctx context.Context, query string) (bool, error) {
	switch {
	case strings.Contains(query, "open youtube"):
		a.openTarget("https://www.youtube.com")
		a.Speak(ctx, "Opening YouTube.")
	case strings.Contains(query, "open google"):
		a.openTarget("https://www.google.com")
		a.Speak(ctx, "Opening Google.")
	case strings.Contains(query, "play music"):
		a.playMusic(ctx)
	case strings.Contains(query, "exit") || strings.Contains(query, "stop"):
		a.Speak(ctx, goodbyeMessage)
		return true, nil
	default:
		reply, err := a.replies.Reply(ctx, query)
		if err != nil {
			return false, fmt.Errorf("could not get a reply: %w", err)
		}
		a.Speak(ctx, reply)
	}
	return false, nil
}

// Speak synthesizes and plays text, relaying it to the UI first. Relay and
// playback failures are logged but never abort the loop.
func (a *Assistant) Speak(ctx context.Context, text string) {
	if text == "" {
		return
	}
	log.Printf("[ASSISTANT] saying: %s", text)
	a.postToUI(text)

	if a.tts == nil || a.player == nil {
		return
	}
	audio, err := a.tts.Synthesize(ctx, text)
	if err != nil {
		log.Printf("[ASSISTANT] synthesis failed: %v", err)
		return
	}
	if err := a.player.Play(audio, a.tts.SampleRate()); err != nil {
		log.Printf("[ASSISTANT] playback failed: %v", err)
	}
}

// Greeting picks the salutation for the given hour of day.
func Greeting(hour int) string {
	switch {
	case hour < 12:
		return "Good morning!"
	case hour < 18:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}

func (a *Assistant) playMusic(ctx context.Context) {
	song, err := firstSong(a.musicDir)
	if err != nil {
		log.Printf("[ASSISTANT] music directory unreadable: %v", err)
		a.Speak(ctx, "No music found.")
		return
	}
	if song == "" {
		a.Speak(ctx, "No music found.")
		return
	}
	a.openTarget(song)
	a.Speak(ctx, "Playing music.")
}

func firstSong(dir string) (string, error) {
	if dir == "" {
		return "", nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", nil
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

func (a *Assistant) openTarget(target string) {
	if err := a.open(target); err != nil {
		log.Printf("[ASSISTANT] could not open %s: %v", target, err)
	}
}

// openWithDesktop hands a URL or file to the desktop's default handler.
func openWithDesktop(target string) error {
	return exec.Command("xdg-open", target).Start()
}

func (a *Assistant) postToUI(text string) {
	if a.uiEndpoint == "" {
		return
	}
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return
	}
	resp, err := a.httpClient.Post(a.uiEndpoint+"/speak", "application/json", bytes.NewReader(payload))
	if err != nil {
		log.Printf("[ASSISTANT] UI server not reachable: %v", err)
		return
	}
	resp.Body.Close()
}
