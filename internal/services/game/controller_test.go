package game

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/edward93/project-joke-web/internal/dependencies/mocks"
	"github.com/edward93/project-joke-web/internal/model"
	"github.com/edward93/project-joke-web/internal/storage/memory"
	"github.com/edward93/project-joke-web/internal/testutil"
)

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	s.controller = NewController(s.storage, s.clock, s.random, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ControllerSuite) user(id, name string) model.User {
	return model.User{ID: model.UserID(id), Username: name}
}

// createReadyGame builds a two-player game in READY state hosted by "host-1"
func (s *ControllerSuite) createReadyGame() *model.Game {
	s.random.QueueString("GAME1234")
	host := s.user("host-1", "Host")
	game, err := s.controller.CreateGame(s.ctx, host)
	s.Require().NoError(err)

	_, err = s.controller.JoinGame(s.ctx, game.ID, s.user("player-1", "Player"))
	s.Require().NoError(err)
	_, err = s.controller.SetReady(s.ctx, game.ID, "host-1")
	s.Require().NoError(err)
	game, err = s.controller.SetReady(s.ctx, game.ID, "player-1")
	s.Require().NoError(err)
	s.Require().Equal(model.GameStateReady, game.State)

	return game
}

// createStartedGame builds a two-player game in STARTED state with seeded sheets
func (s *ControllerSuite) createStartedGame() *model.Game {
	game := s.createReadyGame()
	started, err := s.controller.StartGame(s.ctx, game.ID, "host-1")
	s.Require().NoError(err)
	return started
}

// CreateGame tests

func (s *ControllerSuite) TestCreateGameSucceeds() {
	s.random.QueueString("GAME1234")
	host := s.user("host-1", "Host")

	game, err := s.controller.CreateGame(s.ctx, host)
	s.Require().NoError(err)

	s.Equal(model.GameID("GAME1234"), game.ID)
	s.Equal(model.UserID("host-1"), game.Host)
	s.Equal(model.GameStateWaiting, game.State)
	s.Len(game.Players, 1)
	s.False(game.Players["host-1"].Ready)
	s.Equal([]model.UserID{"host-1"}, game.JoinOrder)
	s.Empty(game.GameSheets)
	s.Equal(int64(1), game.Version)
}

func (s *ControllerSuite) TestCreateGameIsPersisted() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))

	retrieved, err := s.controller.GetGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal(game.ID, retrieved.ID)
}

// JoinGame tests

func (s *ControllerSuite) TestJoinGameSucceeds() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))

	updated, err := s.controller.JoinGame(s.ctx, game.ID, s.user("player-1", "Player"))
	s.Require().NoError(err)

	s.Len(updated.Players, 2)
	s.False(updated.Players["player-1"].Ready)
	s.Equal([]model.UserID{"host-1", "player-1"}, updated.JoinOrder)
}

func (s *ControllerSuite) TestJoinGameNotFound() {
	_, err := s.controller.JoinGame(s.ctx, "MISSING1", s.user("player-1", "Player"))
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestJoinGameDuplicateUser() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))

	_, err := s.controller.JoinGame(s.ctx, game.ID, s.user("host-1", "Host"))
	s.ErrorIs(err, model.ErrAlreadyJoined)
}

func (s *ControllerSuite) TestJoinStartedGameRejected() {
	game := s.createStartedGame()

	_, err := s.controller.JoinGame(s.ctx, game.ID, s.user("late-1", "Late"))
	s.ErrorIs(err, model.ErrInvalidGameState)
}

func (s *ControllerSuite) TestJoinReadyGameRevertsToWaiting() {
	game := s.createReadyGame()

	updated, err := s.controller.JoinGame(s.ctx, game.ID, s.user("player-2", "Third"))
	s.Require().NoError(err)

	s.Equal(model.GameStateWaiting, updated.State)
	for id, p := range updated.Players {
		s.False(p.Ready, "player %s should have been reset", id)
	}
}

// SetReady tests

func (s *ControllerSuite) TestSetReadyMarksPlayer() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))
	_, _ = s.controller.JoinGame(s.ctx, game.ID, s.user("player-1", "Player"))

	updated, err := s.controller.SetReady(s.ctx, game.ID, "player-1")
	s.Require().NoError(err)

	s.True(updated.Players["player-1"].Ready)
	s.False(updated.Players["host-1"].Ready)
	s.Equal(model.GameStateWaiting, updated.State)
}

func (s *ControllerSuite) TestSetReadyAllReadyTransitions() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))
	_, _ = s.controller.JoinGame(s.ctx, game.ID, s.user("player-1", "Player"))

	_, err := s.controller.SetReady(s.ctx, game.ID, "host-1")
	s.Require().NoError(err)
	updated, err := s.controller.SetReady(s.ctx, game.ID, "player-1")
	s.Require().NoError(err)

	s.Equal(model.GameStateReady, updated.State)
}

func (s *ControllerSuite) TestSetReadyUnknownUser() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))

	_, err := s.controller.SetReady(s.ctx, game.ID, "stranger")
	s.ErrorIs(err, model.ErrNotInGame)
}

func (s *ControllerSuite) TestSetReadyAfterStartRejected() {
	game := s.createStartedGame()

	_, err := s.controller.SetReady(s.ctx, game.ID, "host-1")
	s.ErrorIs(err, model.ErrInvalidGameState)
}

// StartGame tests

func (s *ControllerSuite) TestStartGameByNonHostRejected() {
	game := s.createReadyGame()

	_, err := s.controller.StartGame(s.ctx, game.ID, "player-1")
	s.ErrorIs(err, model.ErrNotHost)

	unchanged, _ := s.controller.GetGame(s.ctx, game.ID)
	s.Equal(model.GameStateReady, unchanged.State)
}

func (s *ControllerSuite) TestStartGameBeforeReadyRejected() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))

	_, err := s.controller.StartGame(s.ctx, game.ID, "host-1")
	s.ErrorIs(err, model.ErrInvalidGameState)
}

func (s *ControllerSuite) TestStartGameSeedsSheets() {
	game := s.createReadyGame()

	started, err := s.controller.StartGame(s.ctx, game.ID, "host-1")
	s.Require().NoError(err)

	s.Equal(model.GameStateStarted, started.State)
	s.Len(started.GameSheets, 2)

	catalog := model.Catalog()
	for owner, sheet := range started.GameSheets {
		s.Equal(owner, sheet.Owner)
		s.Require().Len(sheet.Prompts, 6)
		for i, p := range sheet.Prompts {
			s.Equal(catalog[i].ID, p.ID)
			s.False(p.Answered())
		}
	}
}

// AnswerPrompt tests

func (s *ControllerSuite) TestAnswerPromptRecordsAnswer() {
	game := s.createStartedGame()

	updated, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Alice", "host-1")
	s.Require().NoError(err)

	sheet := updated.GameSheets["host-1"]
	s.Equal("Alice", sheet.Prompts[0].Answer)
	s.Equal(model.UserID("host-1"), sheet.Prompts[0].AnsweredBy)
	s.Equal(model.GameStateStarted, updated.State)
}

func (s *ControllerSuite) TestAnswerPromptRejectsAnswered() {
	game := s.createStartedGame()

	_, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Alice", "host-1")
	s.Require().NoError(err)

	_, err = s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Mallory", "player-1")
	s.ErrorIs(err, model.ErrPromptAnswered)

	unchanged, _ := s.controller.GetGame(s.ctx, game.ID)
	s.Equal("Alice", unchanged.GameSheets["host-1"].Prompts[0].Answer)
	s.Equal(model.UserID("host-1"), unchanged.GameSheets["host-1"].Prompts[0].AnsweredBy)
}

func (s *ControllerSuite) TestAnswerPromptValidation() {
	game := s.createStartedGame()

	_, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "", "host-1")
	s.ErrorIs(err, model.ErrEmptyAnswer)

	_, err = s.controller.AnswerPrompt(s.ctx, game.ID, "stranger", model.PromptWho, "Alice", "host-1")
	s.ErrorIs(err, model.ErrSheetNotFound)

	_, err = s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptID(99), "Alice", "host-1")
	s.ErrorIs(err, model.ErrPromptNotFound)

	_, err = s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Alice", "stranger")
	s.ErrorIs(err, model.ErrNotInGame)
}

func (s *ControllerSuite) TestAnswerPromptBeforeStartRejected() {
	game := s.createReadyGame()

	_, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Alice", "host-1")
	s.ErrorIs(err, model.ErrInvalidGameState)
}

func (s *ControllerSuite) TestAnswerPromptStampsProvenance() {
	game := s.createStartedGame()

	_, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Alice", "host-1")
	s.Require().NoError(err)
	updated, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWithWhom, "Bob", "player-1")
	s.Require().NoError(err)

	sheet := updated.GameSheets["host-1"]
	s.Equal(model.UserID("player-1"), sheet.Prompts[1].AnsweredBy)
	s.Equal(model.UserID("host-1"), sheet.Prompts[1].PrevAnsweredBy)
}

// answerAllPrompts completes every sheet, following the rotation to pick
// each prompt's answerer
func (s *ControllerSuite) answerAllPrompts(game *model.Game) *model.Game {
	updated := game
	for _, owner := range game.JoinOrder {
		for _, id := range []model.PromptID{
			model.PromptWho, model.PromptWithWhom, model.PromptWhere,
			model.PromptWhatWereTheyDoing, model.PromptWhoSawThem, model.PromptWhatTheySaid,
		} {
			answerer, ok := updated.DesignatedAnswerer(owner)
			s.Require().True(ok)

			var err error
			updated, err = s.controller.AnswerPrompt(s.ctx, game.ID, owner, id, "answer", answerer)
			s.Require().NoError(err)
		}
	}
	return updated
}

func (s *ControllerSuite) TestAnswerLastPromptFinishesGame() {
	game := s.createStartedGame()

	updated := s.answerAllPrompts(game)

	s.Equal(model.GameStateFinished, updated.State)
}

// FinishGame tests

func (s *ControllerSuite) TestFinishGameIncomplete() {
	game := s.createStartedGame()

	unchanged, done, err := s.controller.FinishGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.False(done)
	s.Equal(model.GameStateStarted, unchanged.State)
}

func (s *ControllerSuite) TestFinishGameBeforeStartRejected() {
	game := s.createReadyGame()

	_, _, err := s.controller.FinishGame(s.ctx, game.ID)
	s.ErrorIs(err, model.ErrInvalidGameState)
}

func (s *ControllerSuite) TestFinishGameAfterCompletion() {
	game := s.createStartedGame()
	s.answerAllPrompts(game)

	finished, done, err := s.controller.FinishGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.True(done)
	s.Equal(model.GameStateFinished, finished.State)
}

// LeaveGame tests

func (s *ControllerSuite) TestLeaveGameRemovesPlayer() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))
	_, _ = s.controller.JoinGame(s.ctx, game.ID, s.user("player-1", "Player"))

	updated, err := s.controller.LeaveGame(s.ctx, game.ID, "player-1")
	s.Require().NoError(err)

	s.Len(updated.Players, 1)
	s.Equal([]model.UserID{"host-1"}, updated.JoinOrder)
}

func (s *ControllerSuite) TestLeaveGameReassignsHost() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))
	_, _ = s.controller.JoinGame(s.ctx, game.ID, s.user("player-1", "Player"))

	updated, err := s.controller.LeaveGame(s.ctx, game.ID, "host-1")
	s.Require().NoError(err)

	s.Equal(model.UserID("player-1"), updated.Host)
}

func (s *ControllerSuite) TestLeaveGameDeletesEmptyGame() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))

	updated, err := s.controller.LeaveGame(s.ctx, game.ID, "host-1")
	s.Require().NoError(err)
	s.Nil(updated)

	_, err = s.controller.GetGame(s.ctx, game.ID)
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *ControllerSuite) TestLeaveGameUnknownUser() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))

	_, err := s.controller.LeaveGame(s.ctx, game.ID, "stranger")
	s.ErrorIs(err, model.ErrNotInGame)
}

// Version stamping

func (s *ControllerSuite) TestVersionIncrementsOnEveryMutation() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))
	s.Equal(int64(1), game.Version)

	joined, _ := s.controller.JoinGame(s.ctx, game.ID, s.user("player-1", "Player"))
	s.Equal(int64(2), joined.Version)

	ready, _ := s.controller.SetReady(s.ctx, game.ID, "host-1")
	s.Equal(int64(3), ready.Version)
}

func (s *ControllerSuite) TestAnswerPromptByWrongPlayerRejected() {
	game := s.createStartedGame()

	// The first prompt on the host's sheet belongs to the host
	_, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Alice", "player-1")
	s.ErrorIs(err, model.ErrOutOfTurn)

	unchanged, _ := s.controller.GetGame(s.ctx, game.ID)
	s.False(unchanged.GameSheets["host-1"].Prompts[0].Answered())
}

func (s *ControllerSuite) TestAnswerPromptSkippingAheadRejected() {
	game := s.createStartedGame()

	// The second prompt may not be answered while the first is blank
	_, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWithWhom, "Bob", "player-1")
	s.ErrorIs(err, model.ErrOutOfTurn)
}

func (s *ControllerSuite) TestAnswerRotatesByJoinOrder() {
	game := s.createStartedGame()

	// host's sheet: host answers first, then the next joiner
	updated, err := s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWho, "Alice", "host-1")
	s.Require().NoError(err)

	answerer, ok := updated.DesignatedAnswerer("host-1")
	s.Require().True(ok)
	s.Equal(model.UserID("player-1"), answerer)

	_, err = s.controller.AnswerPrompt(s.ctx, game.ID, "host-1", model.PromptWithWhom, "Bob", "player-1")
	s.Require().NoError(err)
}

// Snapshot independence

func (s *ControllerSuite) TestReturnedGameIsSnapshot() {
	s.random.QueueString("GAME1234")
	snapshot, err := s.controller.CreateGame(s.ctx, s.user("host-1", "Host"))
	s.Require().NoError(err)

	_, err = s.controller.JoinGame(s.ctx, snapshot.ID, s.user("player-1", "Player"))
	s.Require().NoError(err)

	// The earlier return value does not move with canonical state
	s.Equal(int64(1), snapshot.Version)
	s.Len(snapshot.Players, 1)
	s.Equal([]model.UserID{"host-1"}, snapshot.JoinOrder)

	current, err := s.controller.GetGame(s.ctx, snapshot.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), current.Version)
	s.Len(current.Players, 2)
}

// Readiness scenario from the game's rules: a late joiner invalidates an
// already-ready lobby

func (s *ControllerSuite) TestLateJoinerResetsReadiness() {
	s.random.QueueString("GAME1234")
	game, _ := s.controller.CreateGame(s.ctx, s.user("H", "Host"))
	s.Equal(model.GameStateWaiting, game.State)

	game, _ = s.controller.JoinGame(s.ctx, game.ID, s.user("P", "Second"))
	s.Equal(model.GameStateWaiting, game.State)

	_, _ = s.controller.SetReady(s.ctx, game.ID, "H")
	game, _ = s.controller.SetReady(s.ctx, game.ID, "P")
	s.Equal(model.GameStateReady, game.State)

	game, _ = s.controller.JoinGame(s.ctx, game.ID, s.user("Q", "Third"))
	s.Equal(model.GameStateWaiting, game.State)
	s.False(game.Players["H"].Ready)
	s.False(game.Players["P"].Ready)
	s.False(game.Players["Q"].Ready)
}
