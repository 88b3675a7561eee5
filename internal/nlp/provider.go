package nlp

import (
	"context"
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

// maxFilingChars bounds the filing excerpt handed to the model.
const maxFilingChars = 15000

// FilingSource abstracts EDGAR for the provider.
type FilingSource interface {
	LatestFiling(ctx context.Context, ticker contracts.Ticker) (*Filing, error)
	FilingText(ctx context.Context, url string, maxChars int) (string, error)
}

// Provider implements contracts.NLPProvider: latest filing in, graded
// verdict out. A malformed model response is not a failure — it becomes
// a RawSignal with Parsed=false that normalization discounts.
type Provider struct {
	filings FilingSource
	llm     LLMClient
	log     *logger.Logger
}

func NewProvider(filings FilingSource, llm LLMClient, log *logger.Logger) *Provider {
	return &Provider{filings: filings, llm: llm, log: log}
}

func (p *Provider) AnalyzeEntity(ctx context.Context, ticker contracts.Ticker) (*contracts.RawSignal, error) {
	filing, err := p.filings.LatestFiling(ctx, ticker)
	if err != nil {
		return nil, err
	}

	text, err := p.filings.FilingText(ctx, filing.URL, maxFilingChars)
	if err != nil {
		return nil, err
	}

	output, err := p.llm.Complete(ctx, buildFilingPrompt(string(ticker), filing.Type, text))
	if err != nil {
		return nil, err
	}

	metrics := contracts.NLPMetrics{FilingType: filing.Type}
	if result, ok := parseAnalysis(output); ok {
		metrics.Verdict = result.Verdict
		metrics.SubstanceScore = result.SubstanceScore
		metrics.BuzzScore = result.BuzzScore
		metrics.Parsed = true
	} else {
		p.log.WithField("ticker", ticker).Warnf("model output not decodable, degrading: %.120s", output)
	}

	p.log.WithFields(map[string]interface{}{
		"ticker":    ticker,
		"filing":    filing.Type,
		"verdict":   metrics.Verdict,
		"substance": metrics.SubstanceScore,
		"buzz":      metrics.BuzzScore,
		"parsed":    metrics.Parsed,
	}).Debug("entity analysis complete")

	return &contracts.RawSignal{
		Kind:       contracts.SourceNLP,
		Ticker:     ticker,
		ObservedAt: time.Now().UTC(),
		NLP:        &metrics,
	}, nil
}
