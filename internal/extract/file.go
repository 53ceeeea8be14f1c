package extract

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML form of a rule set. Every list or label that is set
// replaces the default one; unset entries keep their defaults.
type File struct {
	Separators   []string `yaml:"separators"`
	SessionTypes []struct {
		Stem  string `yaml:"stem"`
		Label string `yaml:"label"`
	} `yaml:"session_types"`
	// TeacherRoles are regex alternations for role prefixes, e.g.
	// "доцент|доц\.?". Order is priority.
	TeacherRoles     []string `yaml:"teacher_roles"`
	PasscodeKeywords []string `yaml:"passcode_keywords"`
	Conferences      []struct {
		Domain string `yaml:"domain"`
		Name   string `yaml:"name"`
	} `yaml:"conferences"`
	OnlineHints []string `yaml:"online_hints"`
	RoomPattern string   `yaml:"room_pattern"`
	Labels      struct {
		Online         string `yaml:"online"`
		OnlineWithRoom string `yaml:"online_with_room"`
		Room           string `yaml:"room"`
		RoomPrefix     string `yaml:"room_prefix"`
		Location       string `yaml:"location"`
		Unknown        string `yaml:"unknown"`
	} `yaml:"labels"`
}

// LoadFile reads a YAML rule file and applies it over Default.
func LoadFile(path string) (*Rules, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	return Parse(data)
}

// Parse applies YAML rule data over Default.
func Parse(data []byte) (*Rules, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	for _, l := range []struct {
		name string
		list []string
	}{
		{"separator", f.Separators},
		{"teacher role", f.TeacherRoles},
		{"passcode keyword", f.PasscodeKeywords},
		{"online hint", f.OnlineHints},
	} {
		if err := nonBlank(l.name, l.list); err != nil {
			return nil, err
		}
	}

	r := Default()
	if len(f.Separators) > 0 {
		r.Separators = f.Separators
	}
	if len(f.SessionTypes) > 0 {
		r.SessionTypes = r.SessionTypes[:0:0]
		for _, st := range f.SessionTypes {
			if st.Stem == "" || st.Label == "" {
				return nil, fmt.Errorf("session type needs stem and label: %+v", st)
			}
			r.SessionTypes = append(r.SessionTypes, SessionType{Stem: st.Stem, Label: st.Label})
		}
	}
	if len(f.TeacherRoles) > 0 {
		r.TeacherPatterns = nil
		for _, role := range f.TeacherRoles {
			re, err := regexp.Compile(roleExpr(role))
			if err != nil {
				return nil, fmt.Errorf("teacher role %q: %w", role, err)
			}
			r.TeacherPatterns = append(r.TeacherPatterns, re)
		}
	}
	if len(f.PasscodeKeywords) > 0 {
		r.PasscodeKeywords = f.PasscodeKeywords
	}
	if len(f.Conferences) > 0 {
		r.Conferences = nil
		for _, c := range f.Conferences {
			if strings.TrimSpace(c.Domain) == "" {
				return nil, fmt.Errorf("conference needs a domain: %+v", c)
			}
			r.Conferences = append(r.Conferences, Conference{Domain: c.Domain, Name: c.Name})
		}
	}
	if len(f.OnlineHints) > 0 {
		r.OnlineHints = f.OnlineHints
	}
	if f.RoomPattern != "" {
		re, err := regexp.Compile(f.RoomPattern)
		if err != nil {
			return nil, fmt.Errorf("room pattern: %w", err)
		}
		if re.NumSubexp() < 1 {
			return nil, fmt.Errorf("room pattern %q has no capture group", f.RoomPattern)
		}
		r.RoomPattern = re
	}

	for _, l := range []struct {
		name   string
		src    string
		dst    *string
		verbed bool
	}{
		{"online", f.Labels.Online, &r.Labels.Online, false},
		{"online_with_room", f.Labels.OnlineWithRoom, &r.Labels.OnlineWithRoom, true},
		{"room", f.Labels.Room, &r.Labels.Room, true},
		{"room_prefix", f.Labels.RoomPrefix, &r.Labels.RoomPrefix, false},
		{"location", f.Labels.Location, &r.Labels.Location, true},
		{"unknown", f.Labels.Unknown, &r.Labels.Unknown, false},
	} {
		if l.src == "" {
			continue
		}
		if err := checkLabel(l.src, l.verbed); err != nil {
			return nil, fmt.Errorf("label %s: %w", l.name, err)
		}
		*l.dst = l.src
	}

	r.Compile()
	return r, nil
}

func nonBlank(name string, list []string) error {
	for i, v := range list {
		if strings.TrimSpace(v) == "" {
			return fmt.Errorf("%s %d is empty", name, i+1)
		}
	}
	return nil
}

// checkLabel makes sure a label renders cleanly. Labels that receive a value
// are format strings with exactly one %s, where %% is a literal percent
// sign. The others are shown as is and may not contain % at all.
func checkLabel(label string, verbed bool) error {
	if !verbed {
		if strings.Contains(label, "%") {
			return fmt.Errorf("%q takes no format verbs", label)
		}
		return nil
	}
	rest := strings.ReplaceAll(label, "%%", "")
	if strings.Count(rest, "%") != 1 || strings.Count(rest, "%s") != 1 {
		return fmt.Errorf("%q needs exactly one %%s", label)
	}
	return nil
}
