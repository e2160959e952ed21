package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	orchestration "github.com/koscakluka/ema-walkthrough/core"
	"github.com/koscakluka/ema-walkthrough/core/audio"
	"github.com/koscakluka/ema-walkthrough/core/audio/miniaudio"
	"github.com/koscakluka/ema-walkthrough/core/audio/portaudio"
	"github.com/koscakluka/ema-walkthrough/core/events"
	"github.com/koscakluka/ema-walkthrough/core/page"
	"github.com/koscakluka/ema-walkthrough/core/page/browser"
	"github.com/koscakluka/ema-walkthrough/core/script"
	"github.com/koscakluka/ema-walkthrough/core/speechtotext"
	sttdeepgram "github.com/koscakluka/ema-walkthrough/core/speechtotext/deepgram"
	"github.com/koscakluka/ema-walkthrough/core/texttospeech"
	ttsdeepgram "github.com/koscakluka/ema-walkthrough/core/texttospeech/deepgram"
	"github.com/koscakluka/ema-walkthrough/internal/config"
	"github.com/spf13/cobra"
)

const portaudioBufferSize = 1024

func runCmd() *cobra.Command {
	var (
		pageKind string
		url      string
		voice    string
		backend  string
		headless bool
	)

	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Play a script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("page") {
				cfg.Page = pageKind
			}
			if flags.Changed("url") {
				cfg.URL = url
			}
			if flags.Changed("voice") {
				cfg.Voice = voice
			}
			if flags.Changed("audio") {
				cfg.Audio = backend
			}
			if flags.Changed("headless") {
				cfg.Headless = headless
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			file, err := script.ReadFile(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg, file)
		},
	}

	cmd.Flags().StringVar(&pageKind, "page", config.PageTerminal, "Page to walk through: terminal, browser")
	cmd.Flags().StringVar(&url, "url", "", "URL opened by the browser page")
	cmd.Flags().StringVar(&voice, "voice", "", "Deepgram voice used for narration")
	cmd.Flags().StringVar(&backend, "audio", config.AudioMiniaudio, "Audio backend: miniaudio, portaudio, none")
	cmd.Flags().BoolVar(&headless, "headless", false, "Run the browser without a window")

	return cmd
}

// audioInput is what both capture backends provide.
type audioInput interface {
	speechtotext.AudioInput
	EncodingInfo() audio.EncodingInfo
	Close() error
}

type session struct {
	loop       *events.Loop
	controller *orchestration.Controller
	recognizer *speechtotext.Session
	memory     *page.Memory
	title      string

	ctx  context.Context
	warn func(error)

	closers []func() error
}

func (s *session) post(fn func()) {
	s.loop.Post(fn)
}

func (s *session) close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

func run(ctx context.Context, cfg config.Config, file *script.File) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	s, err := newSession(ctx, cfg, file, send)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.close(); err != nil {
			log.Printf("Error closing walkthrough: %v", err)
		}
	}()

	program = tea.NewProgram(newModel(s), tea.WithContext(ctx))

	loopErr := make(chan error, 1)
	go func() { loopErr <- s.loop.Run(ctx) }()
	s.post(func() {
		if err := s.controller.Play(ctx, 1); err != nil {
			s.warn(err)
		}
	})

	_, err = program.Run()
	cancel()
	if loopErr := <-loopErr; loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		err = errors.Join(err, loopErr)
	}
	if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func newSession(ctx context.Context, cfg config.Config, file *script.File, send func(tea.Msg)) (*session, error) {
	warn := func(err error) { send(warningMsg{err}) }
	s := &session{loop: events.NewLoop(), title: file.Title, ctx: ctx, warn: warn}

	p, err := s.openPage(ctx, cfg, file)
	if err != nil {
		return nil, err
	}

	var output *miniaudio.Client
	var input audioInput
	switch cfg.Audio {
	case config.AudioMiniaudio, config.AudioPortaudio:
		client, err := miniaudio.NewClient()
		if err != nil {
			log.Printf("Warning: audio device unavailable: %v", err)
			break
		}
		output = client
		input = client
		s.closers = append(s.closers, client.Close)
	}
	if cfg.Audio == config.AudioPortaudio {
		client, err := portaudio.NewClient(portaudioBufferSize)
		if err != nil {
			_ = s.close()
			return nil, fmt.Errorf("failed to open portaudio capture: %w", err)
		}
		input = client
		s.closers = append(s.closers, client.Close)
	}

	narrationOpts := []texttospeech.NarrationOption{
		texttospeech.WithExecutor(s.post),
		texttospeech.WithWarningCallback(warn),
	}
	if cfg.Speech() && output != nil {
		ttsOpts := []ttsdeepgram.ClientOption{
			ttsdeepgram.WithAPIKey(cfg.DeepgramAPIKey),
			ttsdeepgram.WithEncodingInfo(output.EncodingInfo()),
		}
		if cfg.Voice != "" {
			voice, err := ttsdeepgram.ParseVoice(cfg.Voice)
			if err != nil {
				_ = s.close()
				return nil, err
			}
			ttsOpts = append(ttsOpts, ttsdeepgram.WithVoice(voice))
		}
		synthesizer, err := ttsdeepgram.NewTextToSpeechClient(ttsOpts...)
		if err != nil {
			_ = s.close()
			return nil, fmt.Errorf("failed to create speech client: %w", err)
		}
		narrationOpts = append(narrationOpts,
			texttospeech.WithSynthesizer(synthesizer),
			texttospeech.WithAudioOutput(output),
		)
	}
	narrator := texttospeech.NewNarration(narrationOpts...)

	sessionOpts := []speechtotext.SessionOption{
		speechtotext.WithExecutor(s.post),
		speechtotext.WithWarningCallback(warn),
		speechtotext.WithUpdateCallback(func(snapshot speechtotext.Snapshot) {
			if s.controller != nil {
				s.controller.HandleSpeech(snapshot)
			}
		}),
	}
	if cfg.Speech() && input != nil {
		sessionOpts = append(sessionOpts,
			speechtotext.WithAudioInput(input),
			speechtotext.WithSessionEncodingInfo(input.EncodingInfo()),
			speechtotext.WithDriverFactory(func(context.Context) (speechtotext.Driver, error) {
				client, err := sttdeepgram.NewClient(
					sttdeepgram.WithAPIKey(cfg.DeepgramAPIKey),
					sttdeepgram.WithModel(cfg.Model),
					sttdeepgram.WithLanguage(cfg.Language),
				)
				if err != nil {
					return nil, err
				}
				return client, nil
			}),
		)
	}
	s.recognizer = speechtotext.NewSession(sessionOpts...)
	s.recognizer.Open(ctx)
	s.closers = append(s.closers, s.recognizer.Close)

	s.controller = orchestration.NewController(
		orchestration.WithNarrator(narrator),
		orchestration.WithRecognizer(s.recognizer),
		orchestration.WithPage(p),
		orchestration.WithExecutor(s.post),
		orchestration.WithStatusCallback(func(status orchestration.Status) { send(statusMsg(status)) }),
		orchestration.WithWarningCallback(warn),
	)
	s.closers = append(s.closers, func() error { return narrator.Cancel() })

	if err := s.controller.Load(file.Steps); err != nil {
		_ = s.close()
		return nil, err
	}
	return s, nil
}

func (s *session) openPage(ctx context.Context, cfg config.Config, file *script.File) (page.Page, error) {
	if cfg.Page == config.PageBrowser {
		p, err := browser.Open(ctx, cfg.URL, browser.WithHeadless(cfg.Headless))
		if err != nil {
			return nil, fmt.Errorf("failed to open browser: %w", err)
		}
		s.closers = append(s.closers, p.Close)
		return p, nil
	}

	s.memory = page.NewMemory()
	for _, el := range file.Elements {
		switch el.Kind {
		case script.ElementControl:
			s.memory.AddControl(el.ID, el.Label, nil)
		case script.ElementField:
			s.memory.AddField(el.ID, el.Label, el.Value)
		default:
			s.memory.AddBlock(el.ID, el.Label)
		}
	}
	return s.memory, nil
}
