// Package mapping resolves source column headers to canonical transaction fields.
package mapping

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Canonical fields a header may resolve to. Unresolved headers map to "".
const (
	TransactionDate = "transaction_date"
	Description     = "description"
	Amount          = "amount"
	AmountIn        = "amount_in"
	AmountOut       = "amount_out"
)

var ErrMissingVersion = errors.New("mapping: config missing required version")

// FileOverride applies Headers to source files matching Pattern.
type FileOverride struct {
	Pattern string            `mapstructure:"pattern"`
	Headers map[string]string `mapstructure:"headers"`
}

// Config is a versioned header mapping. It must not be modified after Load.
type Config struct {
	Version       string              `mapstructure:"version"`
	Synonyms      map[string][]string `mapstructure:"synonyms"`
	Rules         map[string]string   `mapstructure:"rules"`
	FileOverrides []FileOverride      `mapstructure:"file_overrides"`
}

// Resolution maps each raw header to a canonical field, or "" when unresolved.
type Resolution map[string]string

// Load reads a YAML mapping file.
func Load(file string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(file)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("mapping: read %s: %w", file, err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("mapping: decode %s: %w", file, err)
	}
	cfg.Version = strings.TrimSpace(v.GetString("version"))
	if cfg.Version == "" {
		return nil, ErrMissingVersion
	}
	return &cfg, nil
}

// Default is the built-in mapping used when no mapping file is configured.
func Default() *Config {
	return &Config{
		Version: "builtin-1",
		Synonyms: map[string][]string{
			TransactionDate: {"date", "transaction date", "posting date", "booking date", "value date"},
			Description:     {"description", "details", "narrative", "memo", "payee"},
			Amount:          {"amount", "value", "sum"},
			AmountIn:        {"credit", "money in", "paid in"},
			AmountOut:       {"debit", "money out", "paid out"},
		},
	}
}

// Resolve maps headers to canonical fields with file overrides taking
// precedence over rules, and rules over synonyms.
func Resolve(headers []string, sourceFile string, cfg *Config) Resolution {
	res := make(Resolution, len(headers))
	for _, h := range headers {
		res[h] = ""
	}
	if cfg == nil {
		return res
	}

	for _, o := range cfg.FileOverrides {
		if !matchFile(o.Pattern, sourceFile) {
			continue
		}
		table := lowerKeys(o.Headers)
		for _, h := range headers {
			if res[h] != "" {
				continue
			}
			if c, ok := table[strings.ToLower(h)]; ok {
				res[h] = c
			}
		}
	}

	rules := lowerKeys(cfg.Rules)
	for _, h := range headers {
		if res[h] != "" {
			continue
		}
		if c, ok := rules[strings.ToLower(h)]; ok {
			res[h] = c
		}
	}

	synonyms := synonymLookup(cfg.Synonyms)
	for _, h := range headers {
		if res[h] != "" {
			continue
		}
		res[h] = synonyms[strings.ToLower(h)]
	}
	return res
}

func matchFile(pattern, sourceFile string) bool {
	if pattern == "" {
		return false
	}
	if ok, _ := path.Match(pattern, filepath.ToSlash(sourceFile)); ok {
		return true
	}
	ok, _ := path.Match(pattern, filepath.Base(sourceFile))
	return ok
}

func lowerKeys(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = v
	}
	return out
}

// synonymLookup inverts the synonym table. Canonicals are visited in sorted
// order so a synonym listed twice resolves the same way every run.
func synonymLookup(syn map[string][]string) map[string]string {
	canonicals := make([]string, 0, len(syn))
	for c := range syn {
		canonicals = append(canonicals, c)
	}
	sort.Strings(canonicals)
	out := make(map[string]string)
	for _, c := range canonicals {
		for _, s := range syn[c] {
			key := strings.ToLower(s)
			if _, taken := out[key]; !taken {
				out[key] = c
			}
		}
	}
	return out
}
