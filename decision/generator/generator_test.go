package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"google.golang.org/genai"

	perrors "smart-pricing/pkg/errors"
)

func TestMain(m *testing.M) {
	// genai imports opencensus, whose stats worker starts at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeModels struct {
	gotModel    string
	gotContents []*genai.Content
	gotConfig   *genai.GenerateContentConfig

	resp *genai.GenerateContentResponse
	err  error
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotContents = contents
	f.gotConfig = config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: "model"}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func TestGemini_Generate(t *testing.T) {
	models := &fakeModels{resp: textResponse(`{"materials":`, `[]}`)}
	g := newGemini(models, 0.2, zerolog.Nop())

	text, err := g.Generate(context.Background(), Request{
		Model:             "gemini-test",
		Content:           `Mô tả sản phẩm: "Tủ bếp"`,
		SystemInstruction: "chỉ trả về JSON",
	})
	require.NoError(t, err)
	assert.Equal(t, `{"materials":[]}`, text)

	assert.Equal(t, "gemini-test", models.gotModel)
	require.Len(t, models.gotContents, 1)
	assert.Equal(t, `Mô tả sản phẩm: "Tủ bếp"`, models.gotContents[0].Parts[0].Text)
	require.NotNil(t, models.gotConfig)
	assert.Equal(t, "application/json", models.gotConfig.ResponseMIMEType)
	require.NotNil(t, models.gotConfig.Temperature)
	assert.InDelta(t, 0.2, *models.gotConfig.Temperature, 1e-6)
	require.NotNil(t, models.gotConfig.SystemInstruction)
	assert.Equal(t, "chỉ trả về JSON", models.gotConfig.SystemInstruction.Parts[0].Text)
}

func TestGemini_DefaultModel(t *testing.T) {
	models := &fakeModels{resp: textResponse("{}")}
	g := newGemini(models, 0, zerolog.Nop())

	_, err := g.Generate(context.Background(), Request{Content: "x"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, models.gotModel)
	assert.Nil(t, models.gotConfig.SystemInstruction)
}

func TestGemini_Errors(t *testing.T) {
	g := newGemini(&fakeModels{err: errors.New("quota exceeded")}, 0, zerolog.Nop())
	_, err := g.Generate(context.Background(), Request{Content: "x"})
	assert.ErrorContains(t, err, "quota exceeded")

	g = newGemini(&fakeModels{resp: &genai.GenerateContentResponse{}}, 0, zerolog.Nop())
	_, err = g.Generate(context.Background(), Request{Content: "x"})
	assert.ErrorContains(t, err, "no candidates")
}

func TestNewGemini_RequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", 0, zerolog.Nop())
	assert.Error(t, err)
}

func TestWithTimeout_PassesReplyThrough(t *testing.T) {
	g := WithTimeout(Static("```json\n{}\n```"), time.Second)

	text, err := g.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "```json\n{}\n```", text)
}

func TestWithTimeout_Expiry(t *testing.T) {
	slow := Func(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	_, err := WithTimeout(slow, 20*time.Millisecond).Generate(context.Background(), Request{})

	require.ErrorIs(t, err, perrors.ErrGeneratorTimeout)
	assert.NotErrorIs(t, err, perrors.ErrGeneratorCallFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWithTimeout_CallFailure(t *testing.T) {
	failing := Func(func(context.Context, Request) (string, error) {
		return "", errors.New("401 unauthenticated")
	})

	for _, limit := range []time.Duration{0, time.Second} {
		_, err := WithTimeout(failing, limit).Generate(context.Background(), Request{})
		require.ErrorIs(t, err, perrors.ErrGeneratorCallFailed)
		assert.NotErrorIs(t, err, perrors.ErrGeneratorTimeout)
	}
}

func TestWithTimeout_CallerCancellationIsNotTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := WithTimeout(Static("{}"), time.Second).Generate(ctx, Request{})
	require.ErrorIs(t, err, perrors.ErrGeneratorCallFailed)
	assert.ErrorIs(t, err, context.Canceled)
}
