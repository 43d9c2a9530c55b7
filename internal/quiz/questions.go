package quiz

import (
	"math/rand"

	"timed-quiz/internal/domain"
)

// OptionCount is the number of answer options generated per question.
const OptionCount = 4

// Permute returns a shuffled copy of values. The same seed yields the same order.
func Permute(rnd *rand.Rand, values []int) []int {
	out := make([]int, len(values))
	copy(out, values)
	// Fisher-Yates via rand.Shuffle
	rnd.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// BuildQuestion turns a source record into a question: the record ID is the
// correct answer and the options are the ID and its next three successors.
func BuildQuestion(rec domain.Record, rnd *rand.Rand) domain.Question {
	options := make([]int, OptionCount)
	for i := range options {
		options[i] = rec.ID + i
	}
	return domain.Question{
		Prompt:        rec.Title,
		CorrectAnswer: rec.ID,
		Options:       Permute(rnd, options),
	}
}

// BuildQuestions converts records in order.
func BuildQuestions(records []domain.Record, rnd *rand.Rand) []domain.Question {
	questions := make([]domain.Question, 0, len(records))
	for _, rec := range records {
		questions = append(questions, BuildQuestion(rec, rnd))
	}
	return questions
}
