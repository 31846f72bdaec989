package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a
	// sensible default or an error, depending on whether the prompt is
	// required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnswer builds the context-grounded answer prompt.
	// The template expects %s (context block) and %s (question).
	PromptAnswer = "answer"

	// PromptAnswerNoContext is used for degraded answers without
	// retrieved passages. The template expects %s (question).
	PromptAnswerNoContext = "answer_no_context"

	// PromptImageAnswer wraps OCR text and the question.
	// The template expects %s (ocr text) and %s (question).
	PromptImageAnswer = "image_answer"
)
