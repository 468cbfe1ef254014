package pipeline

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/theimaginaryfoundation/reverie/history"
)

// Stage identifies where a run currently is. Stages only advance; any stage
// may transition to StageFailed, which is terminal.
type Stage string

const (
	StageTranscribing    Stage = "transcribing"
	StageAnalyzing       Stage = "analyzing"
	StageComposingPrompt Stage = "composing_prompt"
	StageSynthesizing    Stage = "synthesizing"
	StagePersisted       Stage = "persisted"
	StageFailed          Stage = "failed"
)

// Interfaces over the remote-call components so the runner can be exercised
// against fakes. The concrete implementations in this package satisfy them.
type (
	// AudioTranscriber turns an audio payload into transcript text.
	AudioTranscriber interface {
		Transcribe(ctx context.Context, audio []byte, language string) (string, error)
	}
	// Analyzer scores text into a normalized category distribution.
	Analyzer interface {
		Analyze(ctx context.Context, text string) (map[string]float64, error)
	}
	// Composer turns transcript text into an image-generation prompt.
	Composer interface {
		Compose(ctx context.Context, transcript string) (string, error)
	}
	// Synthesizer turns a prompt into raw image bytes.
	Synthesizer interface {
		Synthesize(ctx context.Context, prompt string) ([]byte, error)
	}
	// Appender is the history store operation the runner needs.
	Appender interface {
		Append(ctx context.Context, run history.Run) (string, error)
	}
)

// Result accumulates the artifacts of one run as its stages complete.
type Result struct {
	RunID      string
	Transcript string
	Emotions   map[string]float64
	Themes     map[string]float64
	Prompt     string
	Image      []byte
	ImagePath  string
}

// StageFunc observes stage transitions. The Result holds everything produced
// so far, so callers can surface intermediate artifacts as they appear.
type StageFunc func(stage Stage, r *Result)

// Runner drives one audio payload through the pipeline:
// transcribe, analyze (emotion and theme fan-out), compose, synthesize,
// persist. Failures abort at their stage; no partial run is persisted.
type Runner struct {
	Transcriber AudioTranscriber
	Emotions    Analyzer
	Themes      Analyzer
	Composer    Composer
	Synthesizer Synthesizer
	Artifacts   *ArtifactStore
	History     Appender

	// Language hints the speech provider; empty means autodetect.
	Language string
	// OnStage, when set, is called at every stage transition.
	OnStage StageFunc
	// Log defaults to a discard logger.
	Log *log.Logger
}

func (r *Runner) logger() *log.Logger {
	if r.Log != nil {
		return r.Log
	}
	return log.New(io.Discard)
}

func (r *Runner) notify(stage Stage, res *Result) {
	if r.OnStage != nil {
		r.OnStage(stage, res)
	}
}

func (r *Runner) fail(stage Stage, res *Result, err error) error {
	r.logger().Error("run failed", "stage", stage, "err", err)
	r.notify(StageFailed, res)
	return err
}

// Run executes the full pipeline and persists exactly one history record on
// success, returning the result with its assigned run ID.
func (r *Runner) Run(ctx context.Context, audio []byte) (*Result, error) {
	res, err := r.analyze(ctx, audio)
	if err != nil {
		return nil, err
	}

	r.notify(StageComposingPrompt, res)
	prompt, err := r.Composer.Compose(ctx, res.Transcript)
	if err != nil {
		return nil, r.fail(StageComposingPrompt, res, err)
	}
	res.Prompt = prompt
	r.logger().Info("prompt composed", "chars", len(prompt))

	r.notify(StageSynthesizing, res)
	image, err := r.Synthesizer.Synthesize(ctx, prompt)
	if err != nil {
		return nil, r.fail(StageSynthesizing, res, err)
	}
	res.Image = image

	runID := uuid.NewString()
	path, err := r.Artifacts.Save(runID, image)
	if err != nil {
		return nil, r.fail(StageSynthesizing, res, err)
	}
	res.ImagePath = path

	// The artifact write and the history append are not transactional: if the
	// append fails now, the image file is left orphaned, which is acceptable.
	id, err := r.History.Append(ctx, history.Run{
		ID:         runID,
		Timestamp:  time.Now().UTC(),
		Transcript: res.Transcript,
		Emotions:   res.Emotions,
		Themes:     res.Themes,
		Prompt:     res.Prompt,
		ImagePath:  path,
	})
	if err != nil {
		return nil, r.fail(StageSynthesizing, res, err)
	}
	res.RunID = id

	r.notify(StagePersisted, res)
	r.logger().Info("run persisted", "run_id", id, "image", path)
	return res, nil
}

// Analyze runs only the transcription and analysis stages. Nothing is
// synthesized or persisted.
func (r *Runner) Analyze(ctx context.Context, audio []byte) (*Result, error) {
	return r.analyze(ctx, audio)
}

func (r *Runner) analyze(ctx context.Context, audio []byte) (*Result, error) {
	res := &Result{}

	r.notify(StageTranscribing, res)
	transcript, err := r.Transcriber.Transcribe(ctx, audio, r.Language)
	if err != nil {
		return nil, r.fail(StageTranscribing, res, err)
	}
	res.Transcript = transcript
	r.logger().Info("audio transcribed", "chars", len(transcript))

	r.notify(StageAnalyzing, res)
	// The two analyses are independent; run them concurrently and join both
	// before advancing. Relative order is not observable downstream.
	var (
		wg               sync.WaitGroup
		emotions, themes map[string]float64
		emoErr, themeErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		emotions, emoErr = r.Emotions.Analyze(ctx, transcript)
	}()
	go func() {
		defer wg.Done()
		themes, themeErr = r.Themes.Analyze(ctx, transcript)
	}()
	wg.Wait()
	if emoErr != nil {
		return nil, r.fail(StageAnalyzing, res, emoErr)
	}
	if themeErr != nil {
		return nil, r.fail(StageAnalyzing, res, themeErr)
	}
	res.Emotions, res.Themes = emotions, themes

	return res, nil
}
