package driven

// PromptStore provides access to LLM prompt templates.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// Unknown names return an error; known names fall back to a built-in default.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptGrounded is the system prompt when context exists.
	// The template expects one %s placeholder for the assembled context.
	PromptGrounded = "grounded"

	// PromptNoContext is the system prompt when retrieval found nothing.
	// It tells the model explicitly that no documents back the answer.
	// This prompt has no format placeholders.
	PromptNoContext = "no_context"
)
