package crawl

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestObstructions_Clear_NothingToClear(t *testing.T) {
	t.Parallel()

	site := newFakeSite([][]fakeCard{{card("Job")}})
	site.view = "results"
	confirmer := &fakeConfirmer{}
	o := NewObstructions(DefaultSelectors(), time.Millisecond, confirmer, zap.NewNop())

	require.NoError(t, o.Clear(context.Background(), site))
	require.Zero(t, site.consentClicks)
	require.Zero(t, confirmer.calls)
}

func TestObstructions_Clear_DismissesConsentBanner(t *testing.T) {
	t.Parallel()

	site := newFakeSite([][]fakeCard{{card("Job")}})
	site.view = "results"
	site.consentPending = true
	o := NewObstructions(DefaultSelectors(), time.Millisecond, nil, zap.NewNop())

	require.NoError(t, o.Clear(context.Background(), site))
	require.Equal(t, 1, site.consentClicks)

	// Idempotent once the banner is gone.
	require.NoError(t, o.Clear(context.Background(), site))
	require.Equal(t, 1, site.consentClicks)
}

func TestObstructions_Clear_ChallengeSuspendsOnOperator(t *testing.T) {
	t.Parallel()

	site := detailSite(card("Job"))
	site.challengeOnDetail = true
	confirmer := &fakeConfirmer{}
	o := NewObstructions(DefaultSelectors(), time.Millisecond, confirmer, zap.NewNop())

	require.NoError(t, o.Clear(context.Background(), site))
	require.Equal(t, 1, confirmer.calls)
	require.NotEmpty(t, confirmer.messages[0])
}

func TestObstructions_Clear_ChallengeAbortPropagates(t *testing.T) {
	t.Parallel()

	site := detailSite(card("Job"))
	site.challengeOnDetail = true
	confirmer := &fakeConfirmer{err: errors.New("operator gave up")}
	o := NewObstructions(DefaultSelectors(), time.Millisecond, confirmer, zap.NewNop())

	err := o.Clear(context.Background(), site)
	require.ErrorContains(t, err, "operator gave up")
}
