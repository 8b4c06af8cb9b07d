package dtnsim

// settings.go parses the scenario configuration language inherited from
// the original simulator: flat `key = value` lines under a dotted
// namespace (e.g. "Group.community.nrofHosts = 40"), `[a; b; c;]` sweep
// lists for running several values of one key across a batch, and
// `%%Name.path%%` substitution referencing another key's resolved
// value. No decoder for this exact grammar exists in the example pack,
// so it is hand-parsed here; parsed values are then registered into a
// viper.Viper instance so the rest of the program does typed lookups
// (GetFloat64, GetInt, ...) rather than re-deriving a second lookup
// API.

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// Settings wraps a viper.Viper registry populated from a parsed
// scenario file, plus the sweep lists a batch run iterates over.
type Settings struct {
	v      *viper.Viper
	sweeps map[string][]string
}

var substitutionPattern = regexp.MustCompile(`%%([A-Za-z0-9_.]+)%%`)

// ParseSettingsFile reads a scenario configuration file in the
// `key = value` dotted-namespace grammar and returns a Settings that
// resolves `%%Name.path%%` substitutions and records `[a; b; c;]` sweep
// lists for the caller to iterate over.
func ParseSettingsFile(path string) (*Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening settings file: %w", err)
	}
	defer f.Close()

	raw := make(map[string]string)
	order := make([]string, 0)
	sweeps := make(map[string][]string)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq < 0 {
			return nil, fmt.Errorf("settings file %s line %d: missing '='", path, lineNo)
		}
		key := strings.TrimSpace(line[:eq])
		value := strings.TrimSpace(line[eq+1:])

		if strings.HasPrefix(value, "[") {
			values, err := parseSweep(value)
			if err != nil {
				return nil, fmt.Errorf("settings file %s line %d: %w", path, lineNo, err)
			}
			sweeps[key] = values
			value = values[0]
		}

		if _, present := raw[key]; !present {
			order = append(order, key)
		}
		raw[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	v := viper.New()
	for _, key := range order {
		resolved, err := resolveSubstitutions(raw[key], raw, 0)
		if err != nil {
			return nil, fmt.Errorf("settings file %s: %w", path, err)
		}
		v.Set(key, resolved)
	}

	return &Settings{v: v, sweeps: sweeps}, nil
}

// parseSweep parses a "[a; b; c;]" sweep list into its trimmed elements.
func parseSweep(value string) ([]string, error) {
	trimmed := strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
	parts := strings.Split(trimmed, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty sweep list %q", value)
	}
	return out, nil
}

// resolveSubstitutions replaces every %%Name.path%% reference in value
// with that key's value, itself resolved recursively so chained
// substitutions work, up to a fixed depth to guard against a
// cyclic reference (an invariant violation worth panicking on, but a
// bounded-depth error is cheaper to report and test).
func resolveSubstitutions(value string, raw map[string]string, depth int) (string, error) {
	if depth > 16 {
		return "", fmt.Errorf("substitution depth exceeded resolving %q: likely cyclic reference", value)
	}
	matches := substitutionPattern.FindAllStringSubmatch(value, -1)
	if matches == nil {
		return value, nil
	}
	out := value
	for _, match := range matches {
		ref := match[1]
		refValue, present := raw[ref]
		if !present {
			return "", fmt.Errorf("undefined substitution reference %%%%%s%%%%", ref)
		}
		resolved, err := resolveSubstitutions(refValue, raw, depth+1)
		if err != nil {
			return "", err
		}
		out = strings.ReplaceAll(out, match[0], resolved)
	}
	return out, nil
}

// Sweeps returns the sweep lists recorded for each key that used
// `[a; b; c;]` syntax, for a batch runner to iterate over.
func (s *Settings) Sweeps() map[string][]string {
	return s.sweeps
}

// GetString/GetFloat64/GetInt/GetBool delegate to the underlying
// viper.Viper registry for typed lookups.
func (s *Settings) GetString(key string) string   { return s.v.GetString(key) }
func (s *Settings) GetFloat64(key string) float64 { return s.v.GetFloat64(key) }
func (s *Settings) GetInt(key string) int         { return s.v.GetInt(key) }
func (s *Settings) GetBool(key string) bool       { return s.v.GetBool(key) }

// IsSet reports whether key was present in the parsed file.
func (s *Settings) IsSet(key string) bool { return s.v.IsSet(key) }

// SetDefault installs a fallback value for key if the file didn't set
// one (applied here after parse, since our grammar isn't viper's
// native format).
func (s *Settings) SetDefault(key string, value any) {
	if !s.v.IsSet(key) {
		s.v.Set(key, value)
	}
}
