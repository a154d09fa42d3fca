package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInit_IsIdempotent(t *testing.T) {
	Init()
	Init()

	// Observations after Init must not panic and the handler must serve the
	// registered collectors.
	ObserveCardScanned()
	ObserveRecordPersisted()
	ObserveDuplicate()
	ObserveCardFailure("extract")
	ObservePageAdvanced()
	ObserveObstructionCleared("consent")
	ObserveChallengePause()

	rr := httptest.NewRecorder()
	Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), "jobtrawler_cards_scanned_total")
}

func TestObserve_BeforeInitIsNoop(t *testing.T) {
	// Helpers are nil-guarded; the crawl engine may run without the registry
	// when embedded in tests.
	ObserveCardScanned()
	ObserveCardFailure("open")
}
