package domain

// ChatRole identifies the author of a chat message.
type ChatRole string

// Chat roles understood by every LLM provider.
const (
	ChatRoleSystem    ChatRole = "system"
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one turn in a conversation.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// ChatAnswer is the response to a question.
type ChatAnswer struct {
	// Answer is the generated text.
	Answer string

	// Sources are the citations used to ground the answer.
	Sources []Source

	// Grounded is false when no context was available and the model
	// was told so explicitly.
	Grounded bool
}
