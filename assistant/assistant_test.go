package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirtilabs/kirti/config"
	"github.com/kirtilabs/kirti/interfaces"
)

type scriptedListener struct {
	utterances [][]byte
	errs       []error
	calls      int
}

func (l *scriptedListener) Listen(context.Context) ([]byte, error) {
	i := l.calls
	l.calls++
	if i < len(l.errs) && l.errs[i] != nil {
		return nil, l.errs[i]
	}
	if i < len(l.utterances) {
		return l.utterances[i], nil
	}
	return nil, interfaces.ErrNoSpeech
}

// echoSTT returns the utterance bytes as the transcript.
type echoSTT struct{}

func (echoSTT) Transcribe(_ context.Context, pcm []byte) (string, error) {
	if len(pcm) == 0 {
		return "", interfaces.ErrNoSpeech
	}
	return string(pcm), nil
}

type cannedReplies struct {
	reply string
	err   error
	asked []string
}

func (r *cannedReplies) Reply(_ context.Context, query string) (string, error) {
	r.asked = append(r.asked, query)
	return r.reply, r.err
}

type recordingTTS struct {
	spoken []string
}

func (t *recordingTTS) Synthesize(_ context.Context, text string) ([]byte, error) {
	t.spoken = append(t.spoken, text)
	return []byte(text), nil
}

func (t *recordingTTS) SampleRate() int { return 16000 }

type nopPlayer struct {
	played int
}

func (p *nopPlayer) Play([]byte, int) error {
	p.played++
	return nil
}

func newTestAssistant(t *testing.T, listener Listener, replies interfaces.ReplySource) (*Assistant, *recordingTTS, *[]string) {
	t.Helper()
	tts := &recordingTTS{}
	var opened []string
	a := New(&config.AssistantConfig{}, Deps{
		Listener: listener,
		STT:      echoSTT{},
		Replies:  replies,
		TTS:      tts,
		Player:   &nopPlayer{},
	})
	a.open = func(target string) error {
		opened = append(opened, target)
		return nil
	}
	return a, tts, &opened
}

func TestGreeting(t *testing.T) {
	assert.Equal(t, "Good morning!", Greeting(8))
	assert.Equal(t, "Good afternoon!", Greeting(12))
	assert.Equal(t, "Good afternoon!", Greeting(17))
	assert.Equal(t, "Good evening!", Greeting(18))
	assert.Equal(t, "Good evening!", Greeting(23))
}

func TestHandle_OpenYouTube(t *testing.T) {
	a, tts, opened := newTestAssistant(t, nil, &cannedReplies{})

	stop, err := a.Handle(context.Background(), "please open youtube now")
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Equal(t, []string{"https://www.youtube.com"}, *opened)
	assert.Equal(t, []string{"Opening YouTube."}, tts.spoken)
}

func TestHandle_OpenGoogle(t *testing.T) {
	a, tts, opened := newTestAssistant(t, nil, &cannedReplies{})

	stop, err := a.Handle(context.Background(), "open google")
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Equal(t, []string{"https://www.google.com"}, *opened)
	assert.Equal(t, []string{"Opening Google."}, tts.spoken)
}

func TestHandle_StopWords(t *testing.T) {
	for _, query := range []string{"exit", "please stop now"} {
		a, tts, _ := newTestAssistant(t, nil, &cannedReplies{})
		stop, err := a.Handle(context.Background(), query)
		require.NoError(t, err)
		assert.True(t, stop, query)
		assert.Equal(t, []string{goodbyeMessage}, tts.spoken)
	}
}

func TestHandle_FallsThroughToReplySource(t *testing.T) {
	replies := &cannedReplies{reply: "The library opens at nine."}
	a, tts, _ := newTestAssistant(t, nil, replies)

	stop, err := a.Handle(context.Background(), "when does the library open")
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Equal(t, []string{"when does the library open"}, replies.asked)
	assert.Equal(t, []string{"The library opens at nine."}, tts.spoken)
}

func TestHandle_PlayMusic(t *testing.T) {
	musicDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(musicDir, "b-side.mp3"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(musicDir, "a-side.mp3"), []byte("x"), 0o644))

	a, tts, opened := newTestAssistant(t, nil, &cannedReplies{})
	a.musicDir = musicDir

	stop, err := a.Handle(context.Background(), "play music")
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Equal(t, []string{filepath.Join(musicDir, "a-side.mp3")}, *opened)
	assert.Equal(t, []string{"Playing music."}, tts.spoken)
}

func TestHandle_PlayMusicEmptyDirectory(t *testing.T) {
	a, tts, opened := newTestAssistant(t, nil, &cannedReplies{})
	a.musicDir = t.TempDir()

	stop, err := a.Handle(context.Background(), "play music")
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Empty(t, *opened)
	assert.Equal(t, []string{"No music found."}, tts.spoken)
}

func TestCycle_NoSpeechIsNotAnError(t *testing.T) {
	listener := &scriptedListener{errs: []error{interfaces.ErrNoSpeech}}
	a, tts, _ := newTestAssistant(t, listener, &cannedReplies{})

	stop, err := a.Cycle(context.Background())
	require.NoError(t, err)
	assert.False(t, stop)
	assert.Empty(t, tts.spoken)
}

func TestCycle_ListenFailureSurfaces(t *testing.T) {
	listener := &scriptedListener{errs: []error{errors.New("device gone")}}
	a, _, _ := newTestAssistant(t, listener, &cannedReplies{})

	_, err := a.Cycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not capture audio")
}

func TestRun_GreetsThenStops(t *testing.T) {
	listener := &scriptedListener{utterances: [][]byte{[]byte("what is the time"), []byte("stop")}}
	replies := &cannedReplies{reply: "It is noon."}
	a, tts, _ := newTestAssistant(t, listener, replies)
	a.now = func() time.Time {
		return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	}

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, []string{
		"Good morning!",
		introMessage,
		"It is noon.",
		goodbyeMessage,
	}, tts.spoken)
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	listener := &scriptedListener{}
	a, _, _ := newTestAssistant(t, listener, &cannedReplies{})

	err := a.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSpeak_PostsToUIServer(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/speak", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	a, _, _ := newTestAssistant(t, nil, &cannedReplies{})
	a.uiEndpoint = ts.URL

	a.Speak(context.Background(), "Hello there")
	assert.Equal(t, map[string]string{"text": "Hello there"}, got)
}

func TestSpeak_UnreachableUIServerIsNotFatal(t *testing.T) {
	a, tts, _ := newTestAssistant(t, nil, &cannedReplies{})
	a.uiEndpoint = "http://127.0.0.1:1"

	a.Speak(context.Background(), "still speaking")
	assert.Equal(t, []string{"still speaking"}, tts.spoken)
}
