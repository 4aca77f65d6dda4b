package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAnswer answers a question from retrieved context.
	// The template expects three %s placeholders: question, context, source list.
	PromptAnswer = "answer"

	// PromptAnswerSystem is the system instruction for answering.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"
)
