package models

import "time"

// MoodOption is one of the selectable moods. Entries copy it by value.
type MoodOption struct {
	ID          string `json:"id"`
	Emoji       string `json:"emoji"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
}

type MoodEntry struct {
	ID        string     `json:"id"`
	Mood      MoodOption `json:"mood"`
	Context   string     `json:"context,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Date      string     `json:"date"` // YYYY-MM-DD, derived at save time
}

type WeeklyMood struct {
	Date string      `json:"date"`
	Mood *MoodOption `json:"mood"`
}

type MoodStats struct {
	TotalEntries     int          `json:"totalEntries"`
	CurrentStreak    int          `json:"currentStreak"`
	AverageMood      string       `json:"averageMood"`
	MostFrequentMood *MoodOption  `json:"mostFrequentMood"`
	WeeklyData       []WeeklyMood `json:"weeklyData"`
}

type InsightType string

const (
	InsightPositive    InsightType = "positive"
	InsightNeutral     InsightType = "neutral"
	InsightEncouraging InsightType = "encouraging"
)

type MoodInsight struct {
	Type    InsightType `json:"type"`
	Message string      `json:"message"`
	Emoji   string      `json:"emoji"`
}

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Valid reports whether s is one of the three known sentiments.
func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral:
		return true
	}
	return false
}

func (s Sentiment) Emoji() string {
	switch s {
	case SentimentPositive:
		return "😊"
	case SentimentNegative:
		return "😔"
	}
	return "😐"
}

func (s Sentiment) Color() string {
	switch s {
	case SentimentPositive:
		return "#4CAF50"
	case SentimentNegative:
		return "#F44336"
	}
	return "#9E9E9E"
}

type JournalEntry struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	Mood       string    `json:"mood,omitempty"`
	Sentiment  Sentiment `json:"sentiment,omitempty"` // empty until analyzed
	Tags       []string  `json:"tags,omitempty"`
	IsAnalyzed bool      `json:"isAnalyzed"`
}

type JournalAnalysis struct {
	Sentiment Sentiment `json:"sentiment"`
	Tags      []string  `json:"tags"`
}
