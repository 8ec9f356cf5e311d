package story

import (
	"strings"

	"github.com/edward93/project-joke-web/internal/model"
)

// Service assembles finished stories from completed game sheets
type Service struct{}

// New creates a story service
func New() *Service {
	return &Service{}
}

// Build renders one sheet's answers into a story line. Each prompt
// contributes its join text followed by its answer, except "who saw them"
// where the join text trails the answer so the sentence reads naturally:
//
//	Alice with Bob park dancing Carol saw them and said - hello
func (s *Service) Build(sheet model.GameSheet) string {
	var b strings.Builder
	for _, p := range sheet.Prompts {
		if p.ID == model.PromptWhoSawThem {
			b.WriteString(" ")
			b.WriteString(p.Answer)
			b.WriteString(p.Prompt.JoinText)
			continue
		}
		b.WriteString(p.Prompt.JoinText)
		b.WriteString(p.Answer)
	}
	return b.String()
}

// BuildAll renders one story per sheet, in player join order
func (s *Service) BuildAll(game *model.Game) []string {
	stories := make([]string, 0, len(game.GameSheets))
	for _, owner := range game.JoinOrder {
		if sheet, ok := game.GameSheets[owner]; ok {
			stories = append(stories, s.Build(sheet))
		}
	}
	return stories
}
