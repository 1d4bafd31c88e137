package problemgen

import (
	"fmt"
	"strings"

	"github.com/abhisek/examiz/internal/exam"
)

const systemPrompt = `You are an expert examiner writing timed multiple-choice exams for students.

Rules:
- Questions must be challenging and pedagogically sound for the stated grade level.
- Each question has exactly 4 distinct options and exactly one correct option.
- correctAnswer must repeat the text of the correct option exactly, character for character.
- Distractors should reflect common misconceptions, not random values.
- Each question must be answerable within 60 seconds without a calculator unless the grade calls for one.
- The explanation says why the correct option is right in two or three sentences.
- Do not repeat a question within the same exam.`

// buildUserMessage constructs the user message for one exam.
func buildUserMessage(topic string, grade exam.Grade, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Generate %d multiple-choice questions.\n", count)
	fmt.Fprintf(&b, "Topic: %s\n", topic)
	fmt.Fprintf(&b, "Grade level: %s\n", grade)
	if grade == exam.University {
		b.WriteString("Audience: undergraduate students; assume standard first-year background.\n")
	}
	return b.String()
}
