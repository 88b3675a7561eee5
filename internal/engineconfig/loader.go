package engineconfig

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file and returns Config with raw bytes.
// SSOT 핵심: KnownFields(true)로 오타/미사용 필드 즉시 실패
func Load(path string) (*Config, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, nil, err
	}

	if err := Validate(&cfg); err != nil {
		return nil, data, err
	}

	return &cfg, data, nil
}

// Hash generates a SHA256 hash of the config (canonical JSON).
// 주의: encoding/json은 map 키를 정렬해 직렬화하므로 해시 재현성 보장
func Hash(cfg *Config) (string, error) {
	jsonBytes, err := json.Marshal(cfg)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Default returns the built-in configuration matching the documented
// defaults. Used when no YAML file is present and as the test baseline.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "us_discovery_v3",
			Version:    "3.0.0",
		},
		Quant: Quant{
			Surge: Surge{
				AvgPeriodDays: 252,
				Multiplier:    3.0,
				CurveScale:    0.35,
				MinMarketCapB: 5,
			},
			Peak: Peak{
				HighThreshold: 0.95,
				MAShort:       20,
				MALong:        60,
				RiskRatio:     0.7,
			},
			Neglect: Neglect{
				WindowDays:     60,
				SlopeThreshold: -0.01,
			},
			SubWeights: SubWeights{
				Surge:   0.5,
				Peak:    0.3,
				Neglect: 0.2,
			},
		},
		Macro: Macro{
			RollingWindow: 252,
			ZScoreClip:    3.0,
			Components: ComponentWeights{
				CPI:          0.2,
				Unemployment: 0.3,
				VIX:          0.3,
				YieldCurve:   0.2,
			},
		},
		NLP: NLP{
			AnchorBlend:        0.7,
			ParsedConfidence:   0.8,
			FallbackConfidence: 0.3,
		},
		Regime: Regime{
			RiskOnAbove:    0.3,
			RiskOffBelow:   -0.5,
			EmergencyBelow: -0.8,
			ConfirmCycles:  2,
		},
		Fusion: Fusion{
			BaseWeights: BaseWeights{
				Quant: 0.30,
				Macro: 0.20,
				NLP:   0.50,
			},
			RiskOffShift: 0.15,
		},
		Classify: Classify{
			StrongBuy: 0.6,
			Buy:       0.25,
			HoldAbove: -0.25,
			SellAbove: -0.6,
		},
		Cadence: Cadence{
			QuantRefresh: Duration(1 * time.Hour),
			MacroRefresh: Duration(24 * time.Hour),
			NLPRefresh:   Duration(24 * time.Hour),
			FetchTimeout: Duration(60 * time.Second),
			NLPTimeout:   Duration(180 * time.Second),
		},
		Hedge: Hedge{
			BaseDefenseRatio: 0.3,
			MaxDefenseRatio:  0.5,
			SectorWeights: map[string]float64{
				"consumer_staples": 0.30,
				"utilities":        0.25,
				"gold":             0.25,
				"agricultural":     0.20,
			},
			Sectors: map[string][]string{
				"consumer_staples": {"PG", "KO", "COST", "WMT"},
				"utilities":        {"NEE", "DUK", "SO"},
				"gold":             {"GLD", "NEM"},
				"agricultural":     {"ADM", "DE"},
			},
		},
	}
}
