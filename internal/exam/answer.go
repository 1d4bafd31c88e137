package exam

import (
	"bytes"
	"encoding/json"
)

// Answer is one entry of the answer log. The zero value is NoAnswer, which
// is what a clock expiry records.
type Answer struct {
	Choice   string
	Answered bool
}

// NoAnswer is the sentinel logged when the clock runs out.
var NoAnswer = Answer{}

// Chose returns an Answer for a selected option.
func Chose(option string) Answer {
	return Answer{Choice: option, Answered: true}
}

// String returns the chosen option, or "" for NoAnswer.
func (a Answer) String() string {
	return a.Choice
}

// MarshalJSON encodes NoAnswer as null and a choice as a string.
func (a Answer) MarshalJSON() ([]byte, error) {
	if !a.Answered {
		return []byte("null"), nil
	}
	return json.Marshal(a.Choice)
}

// UnmarshalJSON accepts null or a string.
func (a *Answer) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = NoAnswer
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*a = Chose(s)
	return nil
}

// MarshalYAML encodes NoAnswer as null.
func (a Answer) MarshalYAML() (any, error) {
	if !a.Answered {
		return nil, nil
	}
	return a.Choice, nil
}
