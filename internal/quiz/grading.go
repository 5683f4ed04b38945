package quiz

import "math"

// Autogradable reports whether every question can be machine-graded: each
// question must have options and every option must carry an explicit
// correctness flag. Free-text questions always need a teacher.
func Autogradable(questions []Question) bool {
	for _, q := range questions {
		if q.FreeText || len(q.Options) == 0 {
			return false
		}
		for _, o := range q.Options {
			if o.Correct == nil {
				return false
			}
		}
	}
	return len(questions) > 0
}

// Grade scores a complete answer map against the question set. The result
// is round(correct/total × 100). Callers must have checked Autogradable.
func Grade(questions []Question, answers map[string]Answer) int {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range questions {
		ans, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == ans.OptionID && o.Correct != nil && *o.Correct {
				correct++
				break
			}
		}
	}
	return int(math.Round(float64(correct) / float64(len(questions)) * 100))
}
