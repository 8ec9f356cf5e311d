package model

// PromptID identifies a prompt in the fixed catalog
type PromptID int

// Prompt is an immutable catalog entry contributing one clause to the story
type Prompt struct {
	ID       PromptID `json:"id"`
	Question string   `json:"question"`
	JoinText string   `json:"joinText"`
}

// The six fixed prompts of the story template
const (
	PromptWho PromptID = iota + 1
	PromptWithWhom
	PromptWhere
	PromptWhatWereTheyDoing
	PromptWhoSawThem
	PromptWhatTheySaid
)

// Catalog returns the fixed prompt catalog in story order.
// Questions and join texts match the original story template.
func Catalog() []Prompt {
	return []Prompt{
		{ID: PromptWho, Question: "Who?", JoinText: ""},
		{ID: PromptWithWhom, Question: "With whom?", JoinText: " with "},
		{ID: PromptWhere, Question: "Where?", JoinText: " "},
		{ID: PromptWhatWereTheyDoing, Question: "What were they doing?", JoinText: " "},
		{ID: PromptWhoSawThem, Question: "Who saw them?", JoinText: " saw them"},
		{ID: PromptWhatTheySaid, Question: "What they said?", JoinText: " and said - "},
	}
}

// GamePrompt is a per-sheet instantiation of a catalog prompt
type GamePrompt struct {
	ID     PromptID `json:"id"`
	Prompt Prompt   `json:"prompt"`

	// Answer is empty until a player submits one
	Answer     string `json:"answer,omitempty"`
	AnsweredBy UserID `json:"answeredBy,omitempty"`

	// PrevAnsweredBy records who answered the preceding prompt on the
	// same sheet, preserving provenance when sheets are passed around
	PrevAnsweredBy UserID `json:"prevAnsweredBy,omitempty"`
}

// Answered reports whether this prompt has been answered
func (p *GamePrompt) Answered() bool {
	return p.Answer != ""
}

// InitPrompts returns the six catalog prompts wrapped as unanswered game prompts
func InitPrompts() []GamePrompt {
	catalog := Catalog()
	prompts := make([]GamePrompt, len(catalog))
	for i, p := range catalog {
		prompts[i] = GamePrompt{ID: p.ID, Prompt: p}
	}
	return prompts
}

// GameSheet holds one player's sequence of prompt answers for a round
type GameSheet struct {
	Owner   UserID       `json:"owner"`
	Prompts []GamePrompt `json:"prompts"`
}

// GetPrompt returns the sheet's prompt with the given id, or nil if not present
func (s *GameSheet) GetPrompt(id PromptID) *GamePrompt {
	for i := range s.Prompts {
		if s.Prompts[i].ID == id {
			return &s.Prompts[i]
		}
	}
	return nil
}

// Complete reports whether every prompt on the sheet has an answer
func (s *GameSheet) Complete() bool {
	if len(s.Prompts) == 0 {
		return false
	}
	for i := range s.Prompts {
		if !s.Prompts[i].Answered() {
			return false
		}
	}
	return true
}

// AnsweredCount returns the number of answered prompts on the sheet
func (s *GameSheet) AnsweredCount() int {
	count := 0
	for i := range s.Prompts {
		if s.Prompts[i].Answered() {
			count++
		}
	}
	return count
}
