package quote

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"smart-pricing/db/memory"
	"smart-pricing/decision/catalog"
	"smart-pricing/decision/composer"
	"smart-pricing/decision/generator"
	perrors "smart-pricing/pkg/errors"
)

func TestMain(m *testing.M) {
	// genai imports opencensus, whose stats worker starts at init.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

func newCatalog(t *testing.T) *catalog.Store {
	t.Helper()
	ctx := context.Background()
	s := catalog.NewStore(memory.NewStore(), zerolog.Nop())
	require.Empty(t, s.Load(ctx))
	require.NoError(t, s.Add(ctx, catalog.Materials, catalog.PricedItem{Name: "Ván MDF", Unit: "m2", Price: decimal.NewFromInt(250000)}))
	require.NoError(t, s.Add(ctx, catalog.Labor, catalog.PricedItem{Name: "Lắp đặt", Unit: "công", Price: decimal.NewFromInt(400000)}))
	return s
}

var form = composer.FormInputs{
	CabinetTypes: []string{"trên"},
	Width:        "2.4",
	Materials:    []string{"Ván MDF"},
}

const reply = "```json\n" + `{"productName":"Tủ bếp trên",
	"materials":[{"name":"ván mdf","quantity":3,"unit":"m2"}],
	"accessories":[{"name":"Bản lề","quantity":4,"unit":"cái"}],
	"laborSteps":[{"name":"Lắp đặt","quantity":1,"unit":"công"}]}` + "\n```"

func TestAnalyze_Success(t *testing.T) {
	var got generator.Request
	gen := generator.Func(func(_ context.Context, req generator.Request) (string, error) {
		got = req
		return reply, nil
	})
	a := NewAnalyzer(newCatalog(t), gen, "gemini-test", time.Second, zerolog.Nop())

	q, err := a.Analyze(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, "gemini-test", got.Model)
	assert.Equal(t, `Mô tả sản phẩm: "Làm một tủ bếp trên. Kích thước: rộng 2.4m. Sử dụng các vật liệu chính: Ván MDF."`, got.Content)
	assert.Contains(t, got.SystemInstruction, `["Ván MDF"]`)
	assert.Contains(t, got.SystemInstruction, `"Không có phụ kiện nào"`)

	assert.Equal(t, "Tủ bếp trên", q.ProductName)
	assert.True(t, q.Totals.Materials.Equal(decimal.NewFromInt(750000)))
	assert.True(t, q.Totals.Accessories.IsZero())
	assert.True(t, q.Totals.Labor.Equal(decimal.NewFromInt(400000)))
	assert.True(t, q.GrandTotal.Equal(decimal.NewFromInt(1150000)))
	assert.Equal(t, 1, q.UnmatchedCount)
	assert.NotEqual(t, uuid.Nil, q.ID)
	assert.False(t, q.CreatedAt.IsZero())
	assert.Same(t, q, a.Last())
}

func TestAnalyze_EmptyDescriptionSkipsGenerator(t *testing.T) {
	called := false
	gen := generator.Func(func(context.Context, generator.Request) (string, error) {
		called = true
		return "{}", nil
	})
	a := NewAnalyzer(newCatalog(t), gen, "", 0, zerolog.Nop())

	_, err := a.Analyze(context.Background(), composer.FormInputs{Width: "  "})
	require.ErrorIs(t, err, perrors.ErrEmptyDescription)
	assert.False(t, called)
	assert.Nil(t, a.Last())
}

func TestAnalyze_FailuresKeepPreviousQuote(t *testing.T) {
	replies := []struct {
		text string
		err  error
	}{
		{text: reply},
		{text: "sorry, I cannot help"},
		{err: errors.New("quota exceeded")},
	}
	call := 0
	gen := generator.Func(func(context.Context, generator.Request) (string, error) {
		r := replies[call]
		call++
		return r.text, r.err
	})
	a := NewAnalyzer(newCatalog(t), gen, "", time.Second, zerolog.Nop())

	first, err := a.Analyze(context.Background(), form)
	require.NoError(t, err)

	_, err = a.Analyze(context.Background(), form)
	require.ErrorIs(t, err, perrors.ErrParseMalformed)
	assert.Same(t, first, a.Last())

	_, err = a.Analyze(context.Background(), form)
	require.ErrorIs(t, err, perrors.ErrGeneratorCallFailed)
	assert.Same(t, first, a.Last())
}

func TestAnalyze_FencedEmptyMaterials(t *testing.T) {
	a := NewAnalyzer(newCatalog(t), generator.Static("```json\n{\"materials\":[]}\n```"), "", time.Second, zerolog.Nop())

	q, err := a.Analyze(context.Background(), form)
	require.NoError(t, err)
	assert.True(t, q.GrandTotal.IsZero())
	assert.Empty(t, q.Materials)
}

func TestAnalyze_Timeout(t *testing.T) {
	gen := generator.Func(func(ctx context.Context, _ generator.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	a := NewAnalyzer(newCatalog(t), gen, "", 20*time.Millisecond, zerolog.Nop())

	_, err := a.Analyze(context.Background(), form)
	require.ErrorIs(t, err, perrors.ErrGeneratorTimeout)
	assert.Nil(t, a.Last())
}

func TestAnalyze_PricesAgainstCatalogAtResponseTime(t *testing.T) {
	store := newCatalog(t)
	gen := generator.Func(func(ctx context.Context, _ generator.Request) (string, error) {
		// The catalog changes while the generator is working.
		err := store.Add(ctx, catalog.Accessories, catalog.PricedItem{Name: "Bản lề", Unit: "cái", Price: decimal.NewFromInt(15000)})
		return reply, err
	})
	a := NewAnalyzer(store, gen, "", time.Second, zerolog.Nop())

	q, err := a.Analyze(context.Background(), form)
	require.NoError(t, err)
	assert.True(t, q.Totals.Accessories.Equal(decimal.NewFromInt(60000)))
	assert.Equal(t, 0, q.UnmatchedCount)
}

func TestAnalyze_StaleResponseDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})

	gen := generator.Func(func(_ context.Context, req generator.Request) (string, error) {
		if strings.Contains(req.Content, "dưới") {
			close(started)
			<-release
			return `{"productName":"Cũ"}`, nil
		}
		return `{"productName":"Mới"}`, nil
	})
	a := NewAnalyzer(newCatalog(t), gen, "", time.Second, zerolog.Nop())

	var wg sync.WaitGroup
	var staleErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, staleErr = a.Analyze(context.Background(), composer.FormInputs{CabinetTypes: []string{"dưới"}})
	}()

	<-started
	newer, err := a.Analyze(context.Background(), composer.FormInputs{CabinetTypes: []string{"trên"}})
	require.NoError(t, err)
	close(release)
	wg.Wait()

	require.ErrorIs(t, staleErr, perrors.ErrStaleResponse)
	assert.Same(t, newer, a.Last())
	assert.Equal(t, "Mới", a.Last().ProductName)
}
