package bank

import (
	"fmt"
	"strings"
)

const choiceSystemPrompt = `You are an assessment author writing multiple-choice %s for a skills assessment platform.

Rules:
- Write exactly the requested number of items for the given domain and difficulty.
- Each question must be self-contained, unambiguous and answerable without external material.
- Provide exactly four options labeled A, B, C and D. Exactly one option is correct.
- Distractors must be plausible and reflect common misconceptions, never joke answers.
- Options must be distinct. Do not use "all of the above" or "none of the above".
- Vary which label holds the correct answer across the batch.
- Keep questions under 400 characters and explanations under 600 characters.
- Do not repeat or paraphrase any question from the "already in the bank" list.`

const codingSystemPrompt = `You are a competitive programming problem setter writing coding problems for a skills assessment platform.

Rules:
- Write exactly the requested number of problems for the given domain and difficulty.
- Each problem reads from standard input and writes to standard output.
- Give precise input and output formats and the constraints on every input value.
- Provide one to three worked examples and three to five hidden test cases.
- Every expected output must be exactly what a correct solution prints, with no extra text.
- Titles must be unique and descriptive.
- Do not repeat any problem from the "already in the bank" list.`

const strictSuffix = `

Your previous answer could not be parsed. Respond with JSON only: a single array of objects, with no prose, no markdown and no code fences. Each object has exactly these keys: %s.`

// buildUserMessage constructs the generation request for one batch.
func buildUserMessage(in GenerateInput, maxAvoid int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Domain: %s\n", in.Domain)
	fmt.Fprintf(&b, "Difficulty: %s\n", in.Difficulty)
	fmt.Fprintf(&b, "Number of %s: %d\n", in.Kind.Noun, in.Count)
	fmt.Fprintf(&b, "Difficulty guide: %s\n", difficultyGuide(in.Difficulty))

	b.WriteString("\nAlready in the bank:\n")
	b.WriteString(buildDedup(in.Avoid, maxAvoid))

	return b.String()
}

// strictSystemPrompt is the fallback prompt used when structured output
// could not be parsed.
func strictSystemPrompt(kind Kind) string {
	return kind.system + fmt.Sprintf(strictSuffix, kind.strictKeys)
}

func difficultyGuide(d Difficulty) string {
	switch d {
	case Easy:
		return "fundamentals a beginner with a few weeks of practice can answer"
	case Hard:
		return "advanced scenarios requiring deep understanding or multi-step reasoning"
	default:
		return "practical knowledge expected of a working practitioner"
	}
}
