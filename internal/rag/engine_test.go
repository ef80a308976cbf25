package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"hrdocs-ai/internal/vectorindex"
	vectorindex_mocks "hrdocs-ai/internal/vectorindex/mocks"

	"go.uber.org/mock/gomock"
)

type fakeEmbedder struct {
	vectors  [][]float32
	err      error
	gotTexts []string
}

func (f *fakeEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	f.gotTexts = texts
	return f.vectors, f.err
}

type fakeGenerator struct {
	answer    string
	err       error
	called    bool
	gotSystem string
	gotUser   string
}

func (f *fakeGenerator) GenerateAnswer(_ context.Context, system, user string) (string, error) {
	f.called = true
	f.gotSystem = system
	f.gotUser = user
	return f.answer, f.err
}

func TestEngine_AnswerHappyPath(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	query := []float32{0.1, 0.9}
	embedder := &fakeEmbedder{vectors: [][]float32{query}}
	generator := &fakeGenerator{answer: "You get 25 vacation days (handbook.pdf)."}

	mockIndex := vectorindex_mocks.NewMockIndex(ctrl)
	mockIndex.EXPECT().Search(gomock.Any(), query, 10).Return([]vectorindex.Match{
		{DocumentID: "d1", DocumentName: "handbook.pdf", Text: "Employees get 25 vacation days.", Score: 0.92},
		{DocumentID: "d2", DocumentName: "policy.docx", Text: "Vacation requests need approval.", Score: 0.55},
	}, nil)

	engine := NewEngine(embedder, mockIndex, generator)
	result, err := engine.Answer(context.Background(), "How many vacation days?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.Answer != "You get 25 vacation days (handbook.pdf)." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(result.Sources))
	}
	if result.Sources[0].DocumentName != "handbook.pdf" {
		t.Errorf("best source = %q", result.Sources[0].DocumentName)
	}

	if len(embedder.gotTexts) != 1 || embedder.gotTexts[0] != "How many vacation days?" {
		t.Errorf("embedded texts = %v", embedder.gotTexts)
	}
	if !strings.Contains(generator.gotSystem, "HR assistant") {
		t.Errorf("system prompt missing role: %q", generator.gotSystem)
	}

	// The generator prompt must carry the retrieved passages with their
	// relevance annotations and the original question.
	if !strings.Contains(generator.gotUser, `[Document 1: "handbook.pdf" (Relevance: 92.0%)]`) {
		t.Errorf("context block missing document header: %q", generator.gotUser)
	}
	if !strings.Contains(generator.gotUser, "Employees get 25 vacation days.") {
		t.Errorf("context block missing passage text: %q", generator.gotUser)
	}
	if !strings.Contains(generator.gotUser, "QUESTION: How many vacation days?") {
		t.Errorf("user message missing question: %q", generator.gotUser)
	}
}

func TestEngine_NoCandidatesReturnsCannedAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := &fakeEmbedder{vectors: [][]float32{{1}}}
	generator := &fakeGenerator{answer: "should not be used"}

	mockIndex := vectorindex_mocks.NewMockIndex(ctrl)
	mockIndex.EXPECT().Search(gomock.Any(), gomock.Any(), 10).Return(nil, nil)

	engine := NewEngine(embedder, mockIndex, generator)
	result, err := engine.Answer(context.Background(), "anything indexed?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if result.Answer != noResultsAnswer {
		t.Errorf("Answer = %q, want canned no-results answer", result.Answer)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Errorf("Sources = %v, want empty non-nil slice", result.Sources)
	}
	if generator.called {
		t.Error("generator called with an empty candidate set")
	}
}

func TestEngine_WeakCandidatesFallBackToUnfiltered(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := &fakeEmbedder{vectors: [][]float32{{1}}}
	generator := &fakeGenerator{answer: "best effort answer"}

	// Every candidate sits below the score threshold.
	mockIndex := vectorindex_mocks.NewMockIndex(ctrl)
	mockIndex.EXPECT().Search(gomock.Any(), gomock.Any(), 10).Return([]vectorindex.Match{
		{DocumentID: "d1", DocumentName: "a.pdf", Text: "weak one", Score: 0.2},
		{DocumentID: "d2", DocumentName: "b.pdf", Text: "weak two", Score: 0.1},
	}, nil)

	engine := NewEngine(embedder, mockIndex, generator)
	result, err := engine.Answer(context.Background(), "anything?")
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}

	if len(result.Sources) != 2 {
		t.Errorf("got %d sources, want unfiltered fallback to keep both", len(result.Sources))
	}
}

func TestEngine_GeneratorFailureYieldsExtractiveAnswer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := &fakeEmbedder{vectors: [][]float32{{1}}}
	generator := &fakeGenerator{err: errors.New("provider timeout")}

	mockIndex := vectorindex_mocks.NewMockIndex(ctrl)
	mockIndex.EXPECT().Search(gomock.Any(), gomock.Any(), 10).Return([]vectorindex.Match{
		{DocumentID: "d1", DocumentName: "handbook.pdf", Text: "Sick leave is unlimited.", Score: 0.8},
		{DocumentID: "d2", DocumentName: "policy.docx", Text: "Notify your manager.", Score: 0.6},
	}, nil)

	engine := NewEngine(embedder, mockIndex, generator)
	result, err := engine.Answer(context.Background(), "sick leave?")
	if err != nil {
		t.Fatalf("Answer() error = %v, want graceful degradation", err)
	}

	if !strings.Contains(result.Answer, "Sick leave is unlimited.") {
		t.Errorf("extractive answer missing top chunk: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, `"handbook.pdf"`) {
		t.Errorf("extractive answer missing document name: %q", result.Answer)
	}
	if !strings.Contains(result.Answer, "1 other relevant document") {
		t.Errorf("extractive answer missing additional-documents note: %q", result.Answer)
	}
	if len(result.Sources) != 2 {
		t.Errorf("got %d sources, want 2", len(result.Sources))
	}
}

func TestEngine_EmbedFailureSurfaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	embedder := &fakeEmbedder{err: errors.New("provider down")}

	engine := NewEngine(embedder, vectorindex_mocks.NewMockIndex(ctrl), &fakeGenerator{})
	if _, err := engine.Answer(context.Background(), "q"); err == nil {
		t.Fatal("Answer() error = nil, want embed failure")
	}
}

func TestSnippet(t *testing.T) {
	short := "short text"
	if got := snippet(short); got != short {
		t.Errorf("snippet() = %q, want unchanged", got)
	}

	long := strings.Repeat("a", 350)
	got := snippet(long)
	if !strings.HasSuffix(got, "…") {
		t.Errorf("snippet() = %q, want ellipsis suffix", got)
	}
	if len(got) > snippetLength+len("…") {
		t.Errorf("snippet() length = %d, exceeds bound", len(got))
	}

	// A multi-byte rune straddling the cut must not be split.
	multibyte := strings.Repeat("é", 200)
	for _, r := range snippet(multibyte) {
		if r == '�' {
			t.Fatal("snippet() split a UTF-8 sequence")
		}
	}
}
