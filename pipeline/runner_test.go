package pipeline

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/theimaginaryfoundation/reverie/history"
)

type fakeTranscriber struct {
	text  string
	err   error
	calls int32
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ []byte, _ string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.text, f.err
}

type fakeAnalyzer struct {
	raw   map[string]float64
	err   error
	calls int32
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) (map[string]float64, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return Softmax(f.raw), nil
}

type fakeComposer struct {
	prompt string
	err    error
	calls  int32
}

func (f *fakeComposer) Compose(_ context.Context, _ string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.prompt, f.err
}

type fakeSynthesizer struct {
	img   []byte
	err   error
	calls int32
}

func (f *fakeSynthesizer) Synthesize(_ context.Context, _ string) ([]byte, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.img, f.err
}

func testStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func distEqual(t *testing.T, got, want map[string]float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got=%v want=%v", got, want)
	}
	for k, w := range want {
		if math.Abs(got[k]-w) > 1e-12 {
			t.Fatalf("got[%q]=%v want %v", k, got[k], w)
		}
	}
}

func TestRunner_EndToEnd(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	artifacts := NewArtifactStore(t.TempDir())
	emotions := &fakeAnalyzer{raw: map[string]float64{"calm": 0.9, "fear": 0.1}}
	themes := &fakeAnalyzer{raw: map[string]float64{"nature": 0.9, "urban": 0.1}}

	r := &Runner{
		Transcriber: &fakeTranscriber{text: "a calm forest at dawn"},
		Emotions:    emotions,
		Themes:      themes,
		Composer:    &fakeComposer{prompt: "a serene forest at sunrise, 4k"},
		Synthesizer: &fakeSynthesizer{img: []byte("PNGDATA")},
		Artifacts:   artifacts,
		History:     store,
	}

	var stages []Stage
	r.OnStage = func(s Stage, _ *Result) { stages = append(stages, s) }

	res, err := r.Run(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.RunID == "" {
		t.Fatal("empty run ID")
	}
	if res.Prompt != "a serene forest at sunrise, 4k" {
		t.Fatalf("prompt=%q", res.Prompt)
	}

	wantStages := []Stage{StageTranscribing, StageAnalyzing, StageComposingPrompt, StageSynthesizing, StagePersisted}
	if len(stages) != len(wantStages) {
		t.Fatalf("stages=%v", stages)
	}
	for i := range wantStages {
		if stages[i] != wantStages[i] {
			t.Fatalf("stages=%v want %v", stages, wantStages)
		}
	}

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("count=%d", n)
	}

	runs, err := store.List(context.Background(), 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != res.RunID {
		t.Fatalf("runs=%+v, want the persisted run %s", runs, res.RunID)
	}
	run := runs[0]
	if run.Transcript != "a calm forest at dawn" {
		t.Fatalf("transcript=%q", run.Transcript)
	}
	if run.Prompt != "a serene forest at sunrise, 4k" {
		t.Fatalf("prompt=%q", run.Prompt)
	}
	distEqual(t, run.Emotions, Softmax(emotions.raw))
	distEqual(t, run.Themes, Softmax(themes.raw))
	if run.Emotions["calm"] <= 0.5 {
		t.Fatalf("calm=%v, want dominant > 0.5", run.Emotions["calm"])
	}
	if run.Themes["nature"] <= 0.5 {
		t.Fatalf("nature=%v, want dominant > 0.5", run.Themes["nature"])
	}

	img, err := artifacts.Read(run.ImagePath)
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}
	if string(img) != "PNGDATA" {
		t.Fatalf("artifact=%q", img)
	}
}

func TestRunner_EmptyTranscriptHaltsPipeline(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	emotions := &fakeAnalyzer{raw: map[string]float64{"calm": 1}}
	themes := &fakeAnalyzer{raw: map[string]float64{"nature": 1}}
	composer := &fakeComposer{prompt: "unused"}
	synth := &fakeSynthesizer{img: []byte("unused")}

	r := &Runner{
		Transcriber: &fakeTranscriber{err: ErrEmptyTranscript},
		Emotions:    emotions,
		Themes:      themes,
		Composer:    composer,
		Synthesizer: synth,
		Artifacts:   NewArtifactStore(t.TempDir()),
		History:     store,
	}

	_, err := r.Run(context.Background(), []byte("audio"))
	if !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("err=%v", err)
	}
	if emotions.calls != 0 || themes.calls != 0 || composer.calls != 0 || synth.calls != 0 {
		t.Fatalf("downstream stages ran: emotions=%d themes=%d composer=%d synth=%d",
			emotions.calls, themes.calls, composer.calls, synth.calls)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Fatalf("count=%d", n)
	}
}

func TestRunner_AnalyzerFailureStopsBeforeComposing(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	composer := &fakeComposer{prompt: "unused"}
	synth := &fakeSynthesizer{img: []byte("unused")}

	r := &Runner{
		Transcriber: &fakeTranscriber{text: "some words"},
		Emotions:    &fakeAnalyzer{err: ErrInvalidAnalysisResponse},
		Themes:      &fakeAnalyzer{raw: map[string]float64{"nature": 1}},
		Composer:    composer,
		Synthesizer: synth,
		Artifacts:   NewArtifactStore(t.TempDir()),
		History:     store,
	}

	_, err := r.Run(context.Background(), []byte("audio"))
	if !errors.Is(err, ErrInvalidAnalysisResponse) {
		t.Fatalf("err=%v", err)
	}
	if composer.calls != 0 || synth.calls != 0 {
		t.Fatalf("composer=%d synth=%d", composer.calls, synth.calls)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Fatalf("count=%d", n)
	}
}

func TestRunner_ImageFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "image backend down", http.StatusInternalServerError)
	}))
	defer srv.Close()

	synth, err := NewImageSynthesizer("key", srv.URL)
	if err != nil {
		t.Fatalf("new synthesizer: %v", err)
	}

	store := testStore(t)
	r := &Runner{
		Transcriber: &fakeTranscriber{text: "a calm forest at dawn"},
		Emotions:    &fakeAnalyzer{raw: map[string]float64{"calm": 1}},
		Themes:      &fakeAnalyzer{raw: map[string]float64{"nature": 1}},
		Composer:    &fakeComposer{prompt: "a serene forest"},
		Synthesizer: synth,
		Artifacts:   NewArtifactStore(t.TempDir()),
		History:     store,
	}

	_, err = r.Run(context.Background(), []byte("audio"))
	var genErr *ImageGenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("err=%v", err)
	}
	if genErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status=%d", genErr.StatusCode)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Fatalf("count=%d", n)
	}
}

func TestRunner_AnalyzeOnlyPersistsNothing(t *testing.T) {
	t.Parallel()

	store := testStore(t)
	composer := &fakeComposer{prompt: "unused"}
	synth := &fakeSynthesizer{img: []byte("unused")}

	r := &Runner{
		Transcriber: &fakeTranscriber{text: "a calm forest at dawn"},
		Emotions:    &fakeAnalyzer{raw: map[string]float64{"calm": 0.9, "fear": 0.1}},
		Themes:      &fakeAnalyzer{raw: map[string]float64{"nature": 0.9, "urban": 0.1}},
		Composer:    composer,
		Synthesizer: synth,
		Artifacts:   NewArtifactStore(t.TempDir()),
		History:     store,
	}

	res, err := r.Analyze(context.Background(), []byte("audio"))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Transcript != "a calm forest at dawn" {
		t.Fatalf("transcript=%q", res.Transcript)
	}
	if len(res.Emotions) == 0 || len(res.Themes) == 0 {
		t.Fatalf("res=%+v", res)
	}
	if composer.calls != 0 || synth.calls != 0 {
		t.Fatalf("composer=%d synth=%d", composer.calls, synth.calls)
	}
	if n, _ := store.Count(context.Background()); n != 0 {
		t.Fatalf("count=%d", n)
	}
}
