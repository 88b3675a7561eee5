// Package classify maps composite scores onto the discrete recommendation
// ladder and enforces the NLP verification guardrail.
package classify

import (
	"time"

	"github.com/redchoeng/stock-recommendation-3.0/internal/contracts"
	"github.com/redchoeng/stock-recommendation-3.0/internal/engineconfig"
)

type Classifier struct {
	cfg engineconfig.Classify
}

func NewClassifier(cfg engineconfig.Classify) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify turns a composite score into a Recommendation.
//
// The ladder is exhaustive and non-overlapping, bands closed on their
// lower bound. Guardrail: the strongest label is never issued without the
// NLP source having contributed this cycle — substance verification is
// what separates STRONG_BUY from BUY, so its absence demotes the label.
func (c *Classifier) Classify(score contracts.CompositeScore) contracts.Recommendation {
	label := c.label(score.Value)

	downgraded := false
	if label == contracts.LabelStrongBuy && !score.HasSource(contracts.SourceNLP) {
		label = contracts.LabelBuy
		downgraded = true
	}

	return contracts.Recommendation{
		Ticker:     score.Ticker,
		Label:      label,
		Composite:  score,
		Downgraded: downgraded,
		CreatedAt:  time.Now().UTC(),
	}
}

func (c *Classifier) label(v float64) contracts.Label {
	switch {
	case v >= c.cfg.StrongBuy:
		return contracts.LabelStrongBuy
	case v >= c.cfg.Buy:
		return contracts.LabelBuy
	case v >= c.cfg.HoldAbove:
		return contracts.LabelHold
	case v > c.cfg.SellAbove:
		return contracts.LabelSell
	default:
		return contracts.LabelAvoid
	}
}
