package rules

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Missing is the sentinel emitted whenever a code or description cannot
// be derived from a record.
const Missing = "MISSING"

// RuleSet holds the fixed code sets and prefix priority that drive
// reason-code selection. The zero value is not usable; start from
// Default or LoadFile.
type RuleSet struct {
	// TrivialCodes are dropped from every record before selection.
	TrivialCodes []string `yaml:"trivial_codes"`
	// SecondaryCodes are dropped during priority selection, unless that
	// would leave no codes at all.
	SecondaryCodes []string `yaml:"secondary_codes"`
	// PrefixPriority is the claim-adjustment group prefix order used to
	// pick the winning code.
	PrefixPriority []string `yaml:"prefix_priority"`

	trivial   map[string]bool
	secondary map[string]bool
}

// Default returns the built-in rule set matching standard claim
// adjustment group codes.
func Default() *RuleSet {
	rs := &RuleSet{
		TrivialCodes:   []string{"PR1", "PR2", "PR3", "PR100", "CO253"},
		SecondaryCodes: []string{"CO45", "OA94", "PR94", "CO94"},
		PrefixPriority: []string{"CO", "PR", "PI", "OA"},
	}
	rs.buildSets()
	return rs
}

// LoadFile reads a YAML rule override file. Empty lists fall back to
// the built-in defaults; every entry is validated as an uppercase code
// or prefix.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rs := &RuleSet{}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}
	def := Default()
	if len(rs.TrivialCodes) == 0 {
		rs.TrivialCodes = def.TrivialCodes
	}
	if len(rs.SecondaryCodes) == 0 {
		rs.SecondaryCodes = def.SecondaryCodes
	}
	if len(rs.PrefixPriority) == 0 {
		rs.PrefixPriority = def.PrefixPriority
	}
	if err := rs.validate(); err != nil {
		return nil, err
	}
	rs.buildSets()
	return rs, nil
}

var (
	codePattern   = regexp.MustCompile(`^[A-Z]+[0-9]+$`)
	prefixLetters = regexp.MustCompile(`^[A-Z]+$`)
)

func (rs *RuleSet) validate() error {
	for _, c := range rs.TrivialCodes {
		if !codePattern.MatchString(c) {
			return fmt.Errorf("invalid trivial code %q in rules", c)
		}
	}
	for _, c := range rs.SecondaryCodes {
		if !codePattern.MatchString(c) {
			return fmt.Errorf("invalid secondary code %q in rules", c)
		}
	}
	for _, p := range rs.PrefixPriority {
		if !prefixLetters.MatchString(p) {
			return fmt.Errorf("invalid prefix %q in rules", p)
		}
	}
	return nil
}

func (rs *RuleSet) buildSets() {
	rs.trivial = make(map[string]bool, len(rs.TrivialCodes))
	for _, c := range rs.TrivialCodes {
		rs.trivial[c] = true
	}
	rs.secondary = make(map[string]bool, len(rs.SecondaryCodes))
	for _, c := range rs.SecondaryCodes {
		rs.secondary[c] = true
	}
}

// ParseCodes splits a raw delimited code list. Semicolons are treated
// as commas, all spaces are stripped, and empty or "NAN" entries are
// dropped. Codes are uppercased for lookup purposes.
func ParseCodes(raw string) []string {
	s := strings.ReplaceAll(raw, ";", ",")
	s = strings.ReplaceAll(s, " ", "")
	parts := strings.Split(s, ",")
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p == "" || p == "NAN" {
			continue
		}
		codes = append(codes, p)
	}
	return codes
}

// ParseDescriptions splits a raw delimited description list on commas.
// An empty or "nan" input yields no descriptions.
func ParseDescriptions(raw string) []string {
	t := strings.TrimSpace(raw)
	if t == "" || strings.EqualFold(t, "nan") {
		return nil
	}
	parts := strings.Split(raw, ",")
	descs := make([]string, len(parts))
	for i, p := range parts {
		descs[i] = strings.TrimSpace(p)
	}
	return descs
}
