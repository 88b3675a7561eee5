// Package nlp implements the substance-verification engine: it pulls the
// latest 10-K/10-Q text from SEC EDGAR and has a local language model
// grade whether the company's story is substantiated or buzzword-driven.
package nlp

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/httputil"
	"github.com/redchoeng/stock-recommendation-3.0/pkg/logger"
)

const submissionsHost = "https://data.sec.gov"

// defaultFilingTypes are checked in order of preference.
var defaultFilingTypes = []string{"10-K", "10-Q"}

// Filing is one SEC filing reference.
type Filing struct {
	Type string
	Date string
	URL  string
}

// EDGARClient reads filing metadata and documents from SEC EDGAR.
// SEC requires a contact address in the User-Agent and ~10 req/s max;
// the caller wires the shared rate limiter into the HTTP client.
type EDGARClient struct {
	http    *httputil.Client
	baseURL string
	log     *logger.Logger

	mu   sync.Mutex
	ciks map[string]string // ticker -> zero-padded CIK
}

func NewEDGARClient(http *httputil.Client, baseURL string, log *logger.Logger) *EDGARClient {
	return &EDGARClient{
		http:    http,
		baseURL: baseURL,
		log:     log,
		ciks:    make(map[string]string),
	}
}

type companyTickers map[string]struct {
	CIK    int    `json:"cik_str"`
	Ticker string `json:"ticker"`
}

// CIK resolves a ticker to its zero-padded CIK. The full mapping file is
// fetched once and kept for the process lifetime.
func (c *EDGARClient) CIK(ctx context.Context, ticker contracts.Ticker) (string, error) {
	key := strings.ToUpper(string(ticker))

	c.mu.Lock()
	if len(c.ciks) > 0 {
		cik, ok := c.ciks[key]
		c.mu.Unlock()
		if !ok {
			return "", fmt.Errorf("edgar: no CIK for %s: %w", ticker, contracts.ErrUnavailable)
		}
		return cik, nil
	}
	c.mu.Unlock()

	var payload companyTickers
	if err := c.http.GetJSON(ctx, c.baseURL+"/files/company_tickers.json", &payload); err != nil {
		return "", fmt.Errorf("edgar ticker map: %w: %v", contracts.ErrUnavailable, err)
	}

	c.mu.Lock()
	for _, entry := range payload {
		c.ciks[strings.ToUpper(entry.Ticker)] = fmt.Sprintf("%010d", entry.CIK)
	}
	cik, ok := c.ciks[key]
	c.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("edgar: no CIK for %s: %w", ticker, contracts.ErrUnavailable)
	}
	return cik, nil
}

type submissions struct {
	Filings struct {
		Recent struct {
			Form            []string `json:"form"`
			AccessionNumber []string `json:"accessionNumber"`
			PrimaryDocument []string `json:"primaryDocument"`
			FilingDate      []string `json:"filingDate"`
		} `json:"recent"`
	} `json:"filings"`
}

// LatestFiling returns the most recent filing of the preferred types.
func (c *EDGARClient) LatestFiling(ctx context.Context, ticker contracts.Ticker) (*Filing, error) {
	cik, err := c.CIK(ctx, ticker)
	if err != nil {
		return nil, err
	}

	var subs submissions
	endpoint := fmt.Sprintf("%s/submissions/CIK%s.json", submissionsHost, cik)
	if err := c.http.GetJSON(ctx, endpoint, &subs); err != nil {
		return nil, fmt.Errorf("edgar submissions for %s: %w: %v", ticker, contracts.ErrUnavailable, err)
	}

	recent := subs.Filings.Recent
	for _, want := range defaultFilingTypes {
		for i, form := range recent.Form {
			if form != want || i >= len(recent.AccessionNumber) || i >= len(recent.PrimaryDocument) {
				continue
			}
			accession := strings.ReplaceAll(recent.AccessionNumber[i], "-", "")
			date := ""
			if i < len(recent.FilingDate) {
				date = recent.FilingDate[i]
			}
			return &Filing{
				Type: form,
				Date: date,
				URL: fmt.Sprintf("%s/Archives/edgar/data/%s/%s/%s",
					c.baseURL, strings.TrimLeft(cik, "0"), accession, recent.PrimaryDocument[i]),
			}, nil
		}
	}
	return nil, fmt.Errorf("edgar: no 10-K/10-Q for %s: %w", ticker, contracts.ErrUnavailable)
}

// FilingText downloads a filing document and strips it to readable text,
// truncated from the middle to fit the model context.
func (c *EDGARClient) FilingText(ctx context.Context, url string, maxChars int) (string, error) {
	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return "", fmt.Errorf("edgar document: %w: %v", contracts.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("edgar document parse: %w: %v", contracts.ErrUnavailable, err)
	}

	doc.Find("script, style").Remove()
	text := collapseWhitespace(doc.Find("body").Text())
	if text == "" {
		text = collapseWhitespace(doc.Text())
	}
	if text == "" {
		return "", fmt.Errorf("edgar document: %w: empty text", contracts.ErrUnavailable)
	}
	return truncateMiddle(text, maxChars), nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateMiddle keeps the head and tail of the document; filings bury
// the financial detail at both ends around boilerplate.
func truncateMiddle(s string, maxChars int) string {
	if maxChars <= 0 || len(s) <= maxChars {
		return s
	}
	half := maxChars / 2
	return s[:half] + "\n...[truncated]...\n" + s[len(s)-half:]
}
