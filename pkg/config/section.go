package config

import (
	"strconv"
	"strings"
)

// Section provides typed access to the options of one config section.
// Option lookups are case insensitive and tracked for unused-option
// detection.
type Section struct {
	name     string
	options  map[string]string
	accessed map[string]struct{}
}

func newSection(name string, options map[string]string) *Section {
	opts := make(map[string]string, len(options))
	for k, v := range options {
		opts[strings.ToLower(k)] = v
	}
	return &Section{
		name:     name,
		options:  opts,
		accessed: make(map[string]struct{}),
	}
}

// GetName returns the section name.
func (s *Section) GetName() string {
	return s.name
}

// lookup fetches the raw value and marks the option accessed whether it was
// present or satisfied by a fallback, so only truly unconsumed options show
// up as unused.
func (s *Section) lookup(option string) (string, bool) {
	key := strings.ToLower(option)
	s.accessed[key] = struct{}{}
	v, ok := s.options[key]
	return v, ok
}

// GetUnusedOptions returns the options no consumer asked for.
func (s *Section) GetUnusedOptions() []string {
	var result []string
	for opt := range s.options {
		if _, ok := s.accessed[opt]; !ok {
			result = append(result, opt)
		}
	}
	return result
}

// HasOption checks whether an option exists in this section.
func (s *Section) HasOption(option string) bool {
	_, ok := s.options[strings.ToLower(option)]
	return ok
}

// Get returns a string option value. A missing option takes the fallback if
// one is provided, and errors otherwise.
func (s *Section) Get(option string, fallback ...string) (string, error) {
	if v, ok := s.lookup(option); ok {
		return v, nil
	}
	if len(fallback) > 0 {
		return fallback[0], nil
	}
	return "", ErrMissingOption(s.name, option)
}

// GetInt returns an integer option value.
func (s *Section) GetInt(option string, fallback ...int) (int, error) {
	v, ok := s.lookup(option)
	if !ok {
		if len(fallback) > 0 {
			return fallback[0], nil
		}
		return 0, ErrMissingOption(s.name, option)
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, ErrInvalidValue(s.name, option, v, "integer")
	}
	return i, nil
}

// GetFloat returns a float64 option value.
func (s *Section) GetFloat(option string, fallback ...float64) (float64, error) {
	v, ok := s.lookup(option)
	if !ok {
		if len(fallback) > 0 {
			return fallback[0], nil
		}
		return 0, ErrMissingOption(s.name, option)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, ErrInvalidValue(s.name, option, v, "float")
	}
	return f, nil
}

// FloatBounds specifies the accepted range for GetFloatWithBounds. Nil
// fields are unconstrained.
type FloatBounds struct {
	MinVal *float64 // minimum value (>=)
	MaxVal *float64 // maximum value (<=)
	Above  *float64 // must be above this value (>)
}

// GetFloatWithBounds returns a float64 option value with range checking.
// Fallback values bypass the bounds; a default is trusted, user input is not.
func (s *Section) GetFloatWithBounds(option string, bounds FloatBounds,
	fallback ...float64) (float64, error) {
	if !s.HasOption(option) {
		return s.GetFloat(option, fallback...)
	}
	v, err := s.GetFloat(option)
	if err != nil {
		return 0, err
	}
	fail := func(constraint string, bound float64) (float64, error) {
		return 0, ErrOutOfRange(s.name, option, v,
			constraint+" "+strconv.FormatFloat(bound, 'f', -1, 64))
	}
	switch {
	case bounds.MinVal != nil && v < *bounds.MinVal:
		return fail("must have minimum of", *bounds.MinVal)
	case bounds.MaxVal != nil && v > *bounds.MaxVal:
		return fail("must have maximum of", *bounds.MaxVal)
	case bounds.Above != nil && v <= *bounds.Above:
		return fail("must be above", *bounds.Above)
	}
	return v, nil
}

// GetBool returns a boolean option value. Accepts 1/true/yes/on and
// 0/false/no/off.
func (s *Section) GetBool(option string, fallback ...bool) (bool, error) {
	v, ok := s.lookup(option)
	if !ok {
		if len(fallback) > 0 {
			return fallback[0], nil
		}
		return false, ErrMissingOption(s.name, option)
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, ErrInvalidValue(s.name, option, v, "boolean")
}

// GetChoice returns a string option that must be one of the valid choices.
func (s *Section) GetChoice(option string, choices []string, fallback ...string) (string, error) {
	v, err := s.Get(option, fallback...)
	if err != nil {
		return "", err
	}
	for _, c := range choices {
		if strings.EqualFold(v, c) {
			return c, nil
		}
	}
	return "", ErrInvalidChoice(s.name, option, v, choices)
}
