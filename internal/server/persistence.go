package server

import (
	"encoding/json"
	"errors"

	"sketch-party/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The audit trail is best effort: every helper is a no-op without a
// database, and callers log failures instead of letting them touch
// gameplay. Row ids are cached on the server under persistMu so the
// session itself stays storage-free.

func (s *Server) persistPlayerJoined(name string) error {
	if s.db == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	id, err := s.ensurePlayerRowLocked(name)
	if err != nil {
		return err
	}
	if err := s.db.Model(&db.Player{}).Where("id = ?", id).Update("left_at", nil).Error; err != nil {
		return err
	}
	return s.persistEventLocked("player_joined", EventPayload{Player: name})
}

func (s *Server) persistPlayerLeft(name string) error {
	if s.db == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	id, ok := s.playerDBIDs[name]
	if !ok {
		return nil
	}
	if err := s.db.Model(&db.Player{}).Where("id = ?", id).Update("left_at", timeNowUTC()).Error; err != nil {
		return err
	}
	return s.persistEventLocked("player_left", EventPayload{Player: name})
}

func (s *Server) persistRound(round roundStart) error {
	if s.db == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	gameID, err := s.ensureGameRowLocked()
	if err != nil {
		return err
	}
	drawerID, err := s.ensurePlayerRowLocked(round.drawer)
	if err != nil {
		return err
	}
	record := db.Round{
		GameID:    gameID,
		Number:    round.number,
		DrawerID:  drawerID,
		Word:      round.word,
		StartedAt: timeNowUTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		return err
	}
	s.roundDBID = record.ID
	return s.persistEventLocked("round_started", EventPayload{Player: round.drawer, RoundNumber: round.number})
}

// persistGuess records every guess made during a round, hit or miss.
// Guesses with no round to attach to are not part of the trail.
func (s *Server) persistGuess(name, text string, correct bool) error {
	if s.db == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.roundDBID == 0 {
		return nil
	}
	playerID, err := s.ensurePlayerRowLocked(name)
	if err != nil {
		return err
	}
	record := db.Guess{
		GameID:   s.gameDBID,
		RoundID:  s.roundDBID,
		PlayerID: playerID,
		Text:     text,
		Correct:  correct,
	}
	return s.db.Create(&record).Error
}

func (s *Server) persistCorrectGuess(name string) error {
	if s.db == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	playerID, err := s.ensurePlayerRowLocked(name)
	if err != nil {
		return err
	}
	if err := s.db.Model(&db.Player{}).Where("id = ?", playerID).Update("score", gorm.Expr("score + 1")).Error; err != nil {
		return err
	}
	if s.roundDBID != 0 {
		updates := map[string]any{
			"winner_id": playerID,
			"ended_at":  timeNowUTC(),
		}
		if err := s.db.Model(&db.Round{}).Where("id = ?", s.roundDBID).Updates(updates).Error; err != nil {
			return err
		}
	}
	return s.persistEventLocked("correct_guess", EventPayload{Player: name})
}

func (s *Server) persistGameOver(scores map[string]int) error {
	if s.db == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.gameDBID == 0 {
		return nil
	}
	updates := map[string]any{
		"ended_at":   timeNowUTC(),
		"end_reason": "completed",
	}
	if err := s.db.Model(&db.Game{}).Where("id = ?", s.gameDBID).Updates(updates).Error; err != nil {
		return err
	}
	return s.persistEventLocked("game_over", EventPayload{Scores: scores})
}

// persistReset closes the current audit cycle and drops the cached row
// ids, so the next write opens a fresh game row.
func (s *Server) persistReset(finalScores map[string]int) error {
	if s.db == nil {
		return nil
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.gameDBID != 0 {
		updates := map[string]any{
			"ended_at":   timeNowUTC(),
			"end_reason": "reset",
		}
		if err := s.db.Model(&db.Game{}).Where("id = ?", s.gameDBID).Updates(updates).Error; err != nil {
			return err
		}
		if err := s.persistEventLocked("game_reset", EventPayload{Reason: "reset", Scores: finalScores}); err != nil {
			return err
		}
	}
	s.gameDBID = 0
	s.roundDBID = 0
	s.playerDBIDs = make(map[string]uint)
	return nil
}

func (s *Server) ensureGameRowLocked() (uint, error) {
	if s.gameDBID != 0 {
		return s.gameDBID, nil
	}
	record := db.Game{
		StartedAt: timeNowUTC(),
		MaxRounds: s.cfg.MaxRounds,
		RoundTime: s.cfg.RoundTimeSeconds,
	}
	if err := s.db.Create(&record).Error; err != nil {
		return 0, err
	}
	s.gameDBID = record.ID
	return record.ID, nil
}

// ensurePlayerRowLocked resolves name to a player row in the current
// cycle, creating it on first sight. A unique violation means another
// cycle write got there first; adopt that row.
func (s *Server) ensurePlayerRowLocked(name string) (uint, error) {
	if id, ok := s.playerDBIDs[name]; ok {
		return id, nil
	}
	gameID, err := s.ensureGameRowLocked()
	if err != nil {
		return 0, err
	}
	record := db.Player{
		GameID:   gameID,
		Name:     name,
		JoinedAt: timeNowUTC(),
	}
	if err := s.db.Create(&record).Error; err != nil {
		if !isUniqueViolation(err) {
			return 0, err
		}
		existing, lookupErr := s.findPlayerDBID(gameID, name)
		if lookupErr != nil || existing == 0 {
			return 0, err
		}
		s.playerDBIDs[name] = existing
		return existing, nil
	}
	s.playerDBIDs[name] = record.ID
	return record.ID, nil
}

func (s *Server) persistEventLocked(eventType string, payload EventPayload) error {
	gameID, err := s.ensureGameRowLocked()
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		GameID:   gameID,
		RoundID:  s.eventRoundIDLocked(),
		PlayerID: s.eventPlayerIDLocked(payload.Player),
		Type:     eventType,
		Payload:  datatypes.JSON(data),
	}
	return s.db.Create(&event).Error
}

func (s *Server) eventRoundIDLocked() *uint {
	if s.roundDBID == 0 {
		return nil
	}
	id := s.roundDBID
	return &id
}

func (s *Server) eventPlayerIDLocked(name string) *uint {
	if name == "" {
		return nil
	}
	id, ok := s.playerDBIDs[name]
	if !ok || id == 0 {
		return nil
	}
	return &id
}

func (s *Server) findPlayerDBID(gameDBID uint, name string) (uint, error) {
	var record db.Player
	if err := s.db.Where("game_id = ? AND name = ?", gameDBID, name).First(&record).Error; err != nil {
		return 0, err
	}
	return record.ID, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
