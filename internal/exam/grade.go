package exam

import (
	"fmt"
	"strings"
)

// Grade is a grade label from the fixed catalogue.
type Grade string

// University is the highest grade level.
const University Grade = "University / Higher Ed"

// DefaultGrade is preselected on the setup screen.
const DefaultGrade Grade = "Class 9"

// DefaultTopic is prefilled on the setup screen.
const DefaultTopic = "Algebraic Equations"

var grades = func() []Grade {
	gs := make([]Grade, 0, 13)
	for i := 1; i <= 12; i++ {
		gs = append(gs, Grade(fmt.Sprintf("Class %d", i)))
	}
	return append(gs, University)
}()

// Grades returns the grade catalogue in ascending order.
func Grades() []Grade {
	return append([]Grade(nil), grades...)
}

// GradeIndex returns the position of g in the catalogue, or -1.
func GradeIndex(g Grade) int {
	for i, x := range grades {
		if x == g {
			return i
		}
	}
	return -1
}

// ParseGrade resolves a label case-insensitively. A bare number is read as
// "Class N".
func ParseGrade(s string) (Grade, error) {
	s = strings.TrimSpace(s)
	for _, g := range grades {
		if strings.EqualFold(string(g), s) || strings.EqualFold(string(g), "Class "+s) {
			return g, nil
		}
	}
	if strings.EqualFold(s, "university") {
		return University, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownGrade, s)
}

// Config is the session configuration chosen before a start request.
type Config struct {
	Topic string
	Grade Grade
}

// Normalize trims the topic and checks both fields.
func (c Config) Normalize() (Config, error) {
	c.Topic = strings.TrimSpace(c.Topic)
	if c.Topic == "" {
		return c, ErrEmptyTopic
	}
	if GradeIndex(c.Grade) < 0 {
		return c, fmt.Errorf("%w: %q", ErrUnknownGrade, c.Grade)
	}
	return c, nil
}
