package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lumenlearn/tutor-backend/internal/llm"
	"github.com/lumenlearn/tutor-backend/internal/models"
	"github.com/lumenlearn/tutor-backend/internal/ratelimit"
	"github.com/lumenlearn/tutor-backend/internal/safety"
	"github.com/lumenlearn/tutor-backend/internal/settings"
)

// Service orchestrates one student chat turn: rate limiting, safety
// classification, persistence, and tutor reply generation.
type Service struct {
	conn      *gorm.DB
	limiter   *ratelimit.Manager
	generator llm.Client
	nowFn     func() time.Time
}

// NewService wires a chat service over the given database, limiter, and
// reply generator.
func NewService(conn *gorm.DB, limiter *ratelimit.Manager, generator llm.Client) *Service {
	return &Service{
		conn:      conn,
		limiter:   limiter,
		generator: generator,
		nowFn:     time.Now,
	}
}

// SetNowFuncForTest overrides the service clock. Tests only.
func (s *Service) SetNowFuncForTest(nowFn func() time.Time) {
	if nowFn != nil {
		s.nowFn = nowFn
	}
}

// Reply is the outcome of one chat turn.
type Reply struct {
	Text           string
	SessionID      string
	Throttled      bool
	Flagged        bool
	ResponseTimeMS int64
}

// Respond processes one student message end to end. A throttled or
// flagged turn still returns a Reply with nil error; the error path is
// reserved for persistence failures.
func (s *Service) Respond(ctx context.Context, studentID, message, sessionID string) (Reply, error) {
	cfg := ratelimit.LoadSettingsConfig()
	decision := s.limiter.CheckAndRecord(ctx, studentID, cfg.Limits())
	if !decision.Allowed {
		log.WithField("student_id", studentID).Info("chat: rate limit hit")
		return Reply{Text: ThrottleMessage, Throttled: true}, nil
	}

	verdict := safety.Classify(message)

	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	start := s.nowFn()
	studentMsg, err := s.saveMessage(studentID, models.RoleStudent, message, sessionID, nil, nil)
	if err != nil {
		return Reply{}, fmt.Errorf("save student message: %w", err)
	}

	if !verdict.Safe {
		s.flagContent(studentID, studentMsg, verdict)
		canned := SafeResponse(verdict.Severity)
		if _, errSave := s.saveMessage(studentID, models.RoleTutor, canned, sessionID, nil, nil); errSave != nil {
			log.WithError(errSave).Error("chat: save canned reply failed")
		}
		return Reply{Text: canned, SessionID: sessionID, Flagged: true}, nil
	}

	history, errHistory := s.History(ctx, studentID, historyContextTurns())
	if errHistory != nil {
		log.WithError(errHistory).Warn("chat: history load failed, replying without context")
		history = nil
	}

	text, errGen := s.generator.TutorReply(ctx, message, toTurns(history))
	if errGen != nil {
		log.WithError(errGen).WithField("student_id", studentID).Error("chat: reply generation failed")
		text = llm.FriendlyReply(errGen)
	}

	elapsed := s.nowFn().Sub(start).Milliseconds()
	tokens := int64(len(message+text) / 4)
	if _, errSave := s.saveMessage(studentID, models.RoleTutor, text, sessionID, &tokens, &elapsed); errSave != nil {
		log.WithError(errSave).Error("chat: save tutor reply failed")
	}

	return Reply{Text: text, SessionID: sessionID, ResponseTimeMS: elapsed}, nil
}

// History returns the student's most recent messages in chronological
// order.
func (s *Service) History(ctx context.Context, studentID string, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = settings.DefaultHistoryContextTurns
	}
	var rows []models.Message
	err := s.conn.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	// Reverse so the oldest turn comes first for prompt context.
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}

// saveMessage writes one conversation turn and bumps the student's
// activity counters in the same transaction.
func (s *Service) saveMessage(studentID, role, body, sessionID string, tokensEst, responseTimeMS *int64) (models.Message, error) {
	msg := models.Message{
		StudentID:      studentID,
		Role:           role,
		Body:           body,
		SessionID:      sessionID,
		TokensEst:      tokensEst,
		ResponseTimeMS: responseTimeMS,
	}
	err := s.conn.Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&msg).Error; errCreate != nil {
			return errCreate
		}
		return tx.Model(&models.Student{}).
			Where("student_id = ?", studentID).
			Updates(map[string]any{
				"total_messages": gorm.Expr("total_messages + 1"),
				"last_active":    s.nowFn(),
			}).Error
	})
	return msg, err
}

// flagContent records a moderation row for an unsafe verdict. Flagging
// failures are logged, never surfaced to the student.
func (s *Service) flagContent(studentID string, msg models.Message, verdict safety.Verdict) {
	snapshot, errMarshal := json.Marshal(map[string]any{
		"safe":     verdict.Safe,
		"category": verdict.Category,
		"severity": verdict.Severity.String(),
		"reason":   verdict.Reason,
	})
	if errMarshal != nil {
		snapshot = []byte("{}")
	}

	flag := models.FlaggedContent{
		StudentID:   studentID,
		MessageID:   msg.ID,
		MessageText: msg.Body,
		Category:    verdict.Category,
		Severity:    verdict.Severity.String(),
		Reason:      fmt.Sprintf("%s (Severity: %s)", verdict.Reason, verdict.Severity),
		Verdict:     datatypes.JSON(snapshot),
	}
	if errCreate := s.conn.Create(&flag).Error; errCreate != nil {
		log.WithError(errCreate).WithField("student_id", studentID).Error("chat: flag content failed")
		return
	}
	log.WithFields(log.Fields{
		"student_id": studentID,
		"category":   verdict.Category,
		"severity":   verdict.Severity.String(),
	}).Warn("chat: content flagged")
}

func toTurns(rows []models.Message) []llm.Turn {
	turns := make([]llm.Turn, 0, len(rows))
	for _, row := range rows {
		role := llm.RoleTutor
		if row.Role == models.RoleStudent {
			role = llm.RoleStudent
		}
		turns = append(turns, llm.Turn{Role: role, Message: row.Body})
	}
	return turns
}

// historyContextTurns reads the context depth from settings, falling
// back to the default on missing or malformed values.
func historyContextTurns() int {
	raw, ok := settings.DBConfigValue(settings.HistoryContextTurnsKey)
	if !ok {
		return settings.DefaultHistoryContextTurns
	}
	var parsedInt int
	if errInt := json.Unmarshal(raw, &parsedInt); errInt == nil && parsedInt > 0 {
		return parsedInt
	}
	var parsedString string
	if errString := json.Unmarshal(raw, &parsedString); errString == nil {
		if parsed, errParse := strconv.Atoi(strings.TrimSpace(parsedString)); errParse == nil && parsed > 0 {
			return parsed
		}
	}
	return settings.DefaultHistoryContextTurns
}
