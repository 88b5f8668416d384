package cli

import "quiz-assessment-engine/internal/domain"

// sampleQuestionSets backs the engine when no Postgres is configured.
func sampleQuestionSets() []domain.QuestionSet {
	return []domain.QuestionSet{
		{
			ID:         "math-easy",
			Topic:      "math",
			Difficulty: "easy",
			Questions: []domain.Question{
				{
					ID:     "m1",
					Prompt: "What is 2 + 2?",
					Options: []domain.Option{
						{ID: "a", Text: "3"},
						{ID: "b", Text: "4", Correct: true},
						{ID: "c", Text: "5"},
					},
					Explanation: "Two pairs make four.",
				},
				{
					ID:     "m2",
					Prompt: "What is 6 x 7?",
					Options: []domain.Option{
						{ID: "a", Text: "42", Correct: true},
						{ID: "b", Text: "36"},
						{ID: "c", Text: "48"},
					},
					Explanation: "Six sevens are forty-two.",
				},
				{
					ID:     "m3",
					Prompt: "Which number is prime?",
					Options: []domain.Option{
						{ID: "a", Text: "9"},
						{ID: "b", Text: "15"},
						{ID: "c", Text: "13", Correct: true},
						{ID: "d", Text: "21"},
					},
					Explanation: "13 has no divisors other than 1 and itself.",
				},
			},
			Hints: []string{
				"Read each option before choosing.",
				"Work the arithmetic on paper first.",
			},
		},
		{
			ID:         "geography-medium",
			Topic:      "geography",
			Difficulty: "medium",
			Questions: []domain.Question{
				{
					ID:     "g1",
					Prompt: "Which river flows through Budapest?",
					Options: []domain.Option{
						{ID: "a", Text: "Rhine"},
						{ID: "b", Text: "Danube", Correct: true},
						{ID: "c", Text: "Vistula"},
					},
					Explanation: "The Danube splits Buda from Pest.",
				},
				{
					ID:     "g2",
					Prompt: "What is the capital of Australia?",
					Options: []domain.Option{
						{ID: "a", Text: "Sydney"},
						{ID: "b", Text: "Melbourne"},
						{ID: "c", Text: "Canberra", Correct: true},
					},
					Explanation: "Canberra was purpose-built as a compromise capital.",
				},
			},
			Hints: []string{"Capitals are not always the largest city."},
		},
	}
}
