package domain

// ChatMessage is a single conversation turn as accepted from the caller and
// forwarded to the LLM provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// PromptKey selects one of the fixed brand-voice system prompts.
type PromptKey string

const (
	PromptSubstackNotes PromptKey = "substack-notes"
	PromptLinkedInPosts PromptKey = "linkedin-posts"
	PromptIGCarousel    PromptKey = "ig-carousel"
	PromptLeadMagnet    PromptKey = "lead-magnet"
)

// ValidRole reports whether role may appear in a caller-supplied transcript.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
