package repository

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"sanctuary/internal/models"
)

// Instants are stored as UTC millisecond RFC 3339 strings, the format the
// mobile client already wrote.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

func encodeTime(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t, nil
}

type moodRecord struct {
	ID        string            `json:"id"`
	Mood      models.MoodOption `json:"mood"`
	Context   string            `json:"context,omitempty"`
	Timestamp string            `json:"timestamp"`
	Date      string            `json:"date"`
}

func encodeMoodEntry(e models.MoodEntry) moodRecord {
	return moodRecord{
		ID:        e.ID,
		Mood:      e.Mood,
		Context:   e.Context,
		Timestamp: encodeTime(e.Timestamp),
		Date:      e.Date,
	}
}

func decodeMoodEntry(r moodRecord) (models.MoodEntry, error) {
	ts, err := decodeTime(r.Timestamp)
	if err != nil {
		return models.MoodEntry{}, fmt.Errorf("mood entry %s: %w", r.ID, err)
	}
	return models.MoodEntry{
		ID:        r.ID,
		Mood:      r.Mood,
		Context:   r.Context,
		Timestamp: ts,
		Date:      r.Date,
	}, nil
}

type journalRecord struct {
	ID         string   `json:"id"`
	LegacyID   string   `json:"_id,omitempty"`
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Timestamp  string   `json:"timestamp"`
	Mood       string   `json:"mood,omitempty"`
	Sentiment  string   `json:"sentiment,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	IsAnalyzed bool     `json:"isAnalyzed"`
}

func encodeJournalEntry(e models.JournalEntry) journalRecord {
	return journalRecord{
		ID:         e.ID,
		Title:      e.Title,
		Content:    e.Content,
		Timestamp:  encodeTime(e.Timestamp),
		Mood:       e.Mood,
		Sentiment:  string(e.Sentiment),
		Tags:       append([]string(nil), e.Tags...),
		IsAnalyzed: e.IsAnalyzed,
	}
}

func decodeJournalEntry(r journalRecord) (models.JournalEntry, error) {
	r.ID = recordID(r.ID, r.LegacyID)
	ts, err := decodeTime(r.Timestamp)
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("journal entry %s: %w", r.ID, err)
	}
	return models.JournalEntry{
		ID:         r.ID,
		Title:      r.Title,
		Content:    r.Content,
		Timestamp:  ts,
		Mood:       r.Mood,
		Sentiment:  models.Sentiment(r.Sentiment),
		Tags:       r.Tags,
		IsAnalyzed: r.IsAnalyzed,
	}, nil
}

type messageRecord struct {
	ID        string `json:"id"`
	LegacyID  string `json:"_id,omitempty"`
	Text      string `json:"text"`
	IsUser    bool   `json:"isUser"`
	Timestamp string `json:"timestamp"`
	SessionID string `json:"sessionId"`
}

func encodeMessage(m models.Message) messageRecord {
	return messageRecord{
		ID:        m.ID,
		Text:      m.Text,
		IsUser:    m.IsUser,
		Timestamp: encodeTime(m.Timestamp),
		SessionID: m.SessionID,
	}
}

func decodeMessage(r messageRecord) (models.Message, error) {
	r.ID = recordID(r.ID, r.LegacyID)
	ts, err := decodeTime(r.Timestamp)
	if err != nil {
		return models.Message{}, fmt.Errorf("message %s: %w", r.ID, err)
	}
	return models.Message{
		ID:        r.ID,
		Text:      r.Text,
		IsUser:    r.IsUser,
		Timestamp: ts,
		SessionID: r.SessionID,
	}, nil
}

type sessionRecord struct {
	ID        string          `json:"id"`
	LegacyID  string          `json:"_id,omitempty"`
	StartTime string          `json:"startTime"`
	EndTime   string          `json:"endTime,omitempty"`
	Messages  []messageRecord `json:"messages"`
}

func encodeSession(s models.UserSession) sessionRecord {
	r := sessionRecord{
		ID:        s.ID,
		StartTime: encodeTime(s.StartTime),
		Messages:  make([]messageRecord, 0, len(s.Messages)),
	}
	if s.EndTime != nil {
		r.EndTime = encodeTime(*s.EndTime)
	}
	for _, m := range s.Messages {
		r.Messages = append(r.Messages, encodeMessage(m))
	}
	return r
}

func decodeSession(r sessionRecord) (models.UserSession, error) {
	r.ID = recordID(r.ID, r.LegacyID)
	start, err := decodeTime(r.StartTime)
	if err != nil {
		return models.UserSession{}, fmt.Errorf("session %s: %w", r.ID, err)
	}
	s := models.UserSession{ID: r.ID, StartTime: start, Messages: []models.Message{}}
	if r.EndTime != "" {
		end, err := decodeTime(r.EndTime)
		if err != nil {
			return models.UserSession{}, fmt.Errorf("session %s: %w", r.ID, err)
		}
		s.EndTime = &end
	}
	for _, mr := range r.Messages {
		m, err := decodeMessage(mr)
		if err != nil {
			return models.UserSession{}, fmt.Errorf("session %s: %w", r.ID, err)
		}
		s.Messages = append(s.Messages, m)
	}
	return s, nil
}

// recordID prefers id and falls back to the _id older clients wrote.
func recordID(id, legacy string) string {
	if id == "" {
		return legacy
	}
	return id
}

// decodeAll converts records, skipping the ones that fail to decode so one bad
// record never costs the rest of the collection.
func decodeAll[R, T any](records []R, decode func(R) (T, error), logger *zap.Logger, key string) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := decode(r)
		if err != nil {
			logger.Warn("skip undecodable record", zap.String("key", key), zap.Error(err))
			continue
		}
		out = append(out, v)
	}
	return out
}

func encodeAll[T, R any](values []T, encode func(T) R) []R {
	out := make([]R, 0, len(values))
	for _, v := range values {
		out = append(out, encode(v))
	}
	return out
}
