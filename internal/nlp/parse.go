package nlp

import (
	"encoding/json"
	"regexp"
	"strings"
)

// analysisResult is the JSON shape the model is asked to produce.
type analysisResult struct {
	Ticker         string   `json:"ticker"`
	SubstanceScore float64  `json:"substance_score"`
	BuzzScore      float64  `json:"buzz_score"`
	KeyFindings    []string `json:"key_findings"`
	Verdict        string   `json:"verdict"`
}

var fenceRe = regexp.MustCompile("```(?:json)?\\s*")
var objectRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseAnalysis decodes the model output, tolerating markdown fences and
// surrounding prose. The second return is false when nothing decodable
// was found; the caller degrades to keyword-only confidence.
func parseAnalysis(raw string) (analysisResult, bool) {
	text := strings.TrimSpace(fenceRe.ReplaceAllString(raw, ""))

	var result analysisResult
	if err := json.Unmarshal([]byte(text), &result); err == nil {
		return clampScores(result), true
	}

	// Models like to wrap the object in commentary despite instructions.
	if match := objectRe.FindString(text); match != "" {
		if err := json.Unmarshal([]byte(match), &result); err == nil {
			return clampScores(result), true
		}
	}
	return analysisResult{}, false
}

// clampScores forces the graded scores back into their declared domains;
// models occasionally ignore the bounds in the prompt.
func clampScores(r analysisResult) analysisResult {
	if r.SubstanceScore < 0 {
		r.SubstanceScore = 0
	}
	if r.SubstanceScore > 10 {
		r.SubstanceScore = 10
	}
	if r.BuzzScore > 0 {
		r.BuzzScore = 0
	}
	if r.BuzzScore < -10 {
		r.BuzzScore = -10
	}
	r.Verdict = strings.ToUpper(strings.TrimSpace(r.Verdict))
	return r
}
