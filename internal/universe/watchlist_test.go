package universe

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
)

func writeWatchlist(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "watchlist.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeWatchlist(t, `
watchlist:
  - ticker: nvda
    name: NVIDIA
    sector: semiconductors
    market_cap_b: 3200
  - ticker: TER
    name: Teradyne
    sector: semiconductors
    market_cap_b: 18
  - ticker: ROK
    sector: automation
`)

	w, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []contracts.Ticker{"NVDA", "TER", "ROK"}, w.Tickers(), "tickers are upcased, order kept")

	caps := w.MarketCaps()
	assert.Equal(t, 3200.0, caps["NVDA"])
	assert.NotContains(t, caps, contracts.Ticker("ROK"), "unknown caps omitted")

	sectors := w.Sectors()
	assert.Equal(t, []contracts.Ticker{"NVDA", "TER"}, sectors["semiconductors"])
	assert.Equal(t, []contracts.Ticker{"ROK"}, sectors["automation"])
}

func TestLoad_RejectsDuplicates(t *testing.T) {
	path := writeWatchlist(t, `
watchlist:
  - ticker: NVDA
  - ticker: nvda
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoad_RejectsEmpty(t *testing.T) {
	_, err := Load(writeWatchlist(t, "watchlist: []\n"))
	require.Error(t, err)

	_, err = Load(writeWatchlist(t, "watchlist:\n  - ticker: \"\"\n"))
	require.Error(t, err)
}

func TestLoad_RejectsUnknownFields(t *testing.T) {
	path := writeWatchlist(t, `
watchlist:
  - ticker: NVDA
    weight: 0.5
`)
	_, err := Load(path)
	require.Error(t, err, "strict decoding catches typoed fields")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/watchlist.yaml")
	require.Error(t, err)
}

func TestRegistry_SwapKeepsFileOrder(t *testing.T) {
	first, err := Load(writeWatchlist(t, `
watchlist:
  - ticker: NVDA
  - ticker: AMD
`))
	require.NoError(t, err)

	r := NewRegistry(first)
	assert.Equal(t, []contracts.Ticker{"NVDA", "AMD"}, r.Tickers())

	second, err := Load(writeWatchlist(t, `
watchlist:
  - ticker: TER
  - ticker: AMD
  - ticker: NVDA
`))
	require.NoError(t, err)

	r.Swap(second)
	assert.Equal(t, []contracts.Ticker{"TER", "AMD", "NVDA"}, r.Tickers(), "file order, not sorted")
	assert.Same(t, second, r.Current())
}
