package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sanctuary/internal/ai"
	"sanctuary/internal/models"
	"sanctuary/internal/repository"
)

type Personality string

const (
	PersonalitySupportive   Personality = "supportive"
	PersonalityMotivational Personality = "motivational"
	PersonalityTherapeutic  Personality = "therapeutic"
	PersonalityCreative     Personality = "creative"
)

type personalityProfile struct {
	prompt  string
	welcome string
}

var personalities = map[Personality]personalityProfile{
	PersonalitySupportive: {
		prompt:  "You are a supportive, empathetic AI companion named Bestie. You're here to provide emotional support, encouragement, and a listening ear. You're warm, understanding, and always try to help users feel better about themselves and their situations. You use gentle, caring language and offer practical advice when appropriate.",
		welcome: "Hi there! I'm your supportive bestie 🤗 I'm here to listen, encourage, and help you through whatever you're going through. How are you feeling today?",
	},
	PersonalityMotivational: {
		prompt:  "You are a motivational AI companion named Bestie. You're energetic, positive, and focused on helping users achieve their goals and overcome challenges. You provide encouragement, celebrate achievements, and help users stay motivated. You use uplifting language and are always ready to cheer them on.",
		welcome: "Hey! I'm your motivational bestie 💪 Ready to crush some goals and overcome challenges together? What's on your mind today?",
	},
	PersonalityTherapeutic: {
		prompt:  "You are a therapeutic AI companion named Bestie. You provide gentle guidance, help users process emotions, and offer therapeutic techniques like mindfulness, cognitive reframing, and emotional regulation. You're professional yet warm, and always prioritize the user's mental well-being.",
		welcome: "Hello! I'm your therapeutic bestie 🧠 I'm here to help you process emotions and provide gentle guidance. What would you like to explore together?",
	},
	PersonalityCreative: {
		prompt:  "You are a creative AI companion named Bestie. You help users express themselves through art, writing, and creative activities. You're imaginative, inspiring, and help users tap into their creative potential. You suggest creative exercises and help users explore their artistic side.",
		welcome: "Hi! I'm your creative bestie 🎨 Let's explore your imagination and create something amazing together! What creative adventure shall we embark on?",
	},
}

// profile falls back to the supportive personality for unknown names.
func (p Personality) profile() personalityProfile {
	if prof, ok := personalities[p]; ok {
		return prof
	}
	return personalities[PersonalitySupportive]
}

// WelcomeMessage is the greeting shown when a conversation opens.
func (p Personality) WelcomeMessage() string { return p.profile().welcome }

const (
	acknowledgement = "I understand. I'm ready to chat as your supportive AI companion."
	apologyMessage  = "I'm sorry, I'm having trouble connecting right now. Please try again in a moment. 💙"
)

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrUnknownSession = errors.New("chat session not found")
)

// ChatContext describes the conversation the user opened.
type ChatContext struct {
	Mood         string
	Therapy      string
	Personality  Personality
	SessionStart time.Time
}

// ChatModel is the conversational side of the AI gateway.
type ChatModel interface {
	ChatWithHistory(ctx context.Context, history []ai.ChatTurn, message string) (string, error)
}

// Companion is the chat persona. Gateway failures become an apology reply,
// never an error.
type Companion struct {
	chat   *repository.ChatRepository
	model  ChatModel
	logger *zap.Logger
	now    func() time.Time
}

func NewCompanion(chat *repository.ChatRepository, model ChatModel, logger *zap.Logger) *Companion {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Companion{chat: chat, model: model, logger: logger, now: time.Now}
}

// StartSession opens a session and returns it with the personality's welcome.
func (c *Companion) StartSession(ctx context.Context, chatCtx ChatContext) (models.UserSession, string, error) {
	session, err := c.chat.CreateSession(ctx)
	if err != nil {
		return models.UserSession{}, "", fmt.Errorf("services.Companion.StartSession: %w", err)
	}
	return session, chatCtx.Personality.WelcomeMessage(), nil
}

// Reply stores the user's message and returns the companion's answer.
// Successful answers are stored too; the apology is not. The session must
// exist; a zero SessionStart is taken from it.
func (c *Companion) Reply(ctx context.Context, sessionID, text string, chatCtx ChatContext) (models.Message, error) {
	const op = "services.Companion.Reply"

	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, fmt.Errorf("%s: %w", op, ErrEmptyMessage)
	}
	session, found := c.chat.GetSession(ctx, sessionID)
	if !found {
		return models.Message{}, fmt.Errorf("%s: %s: %w", op, sessionID, ErrUnknownSession)
	}
	if chatCtx.SessionStart.IsZero() {
		chatCtx.SessionStart = session.StartTime
	}

	prior := c.chat.GetSessionMessages(ctx, sessionID)
	if _, err := c.chat.SaveMessage(ctx, sessionID, text, true); err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}

	answer, err := c.model.ChatWithHistory(ctx, c.history(chatCtx, prior), text)
	if err != nil {
		c.logger.Warn("companion reply failed",
			zap.String("session_id", sessionID),
			zap.String("kind", string(ai.KindOf(err))),
			zap.Error(err))
		now := c.now()
		return models.Message{
			ID:        apologyID(now),
			Text:      apologyMessage,
			Timestamp: now,
			SessionID: sessionID,
		}, nil
	}

	reply, err := c.chat.SaveMessage(ctx, sessionID, answer, false)
	if err != nil {
		return models.Message{}, fmt.Errorf("%s: %w", op, err)
	}
	return reply, nil
}

func apologyID(now time.Time) string {
	return "error-" + strconv.FormatInt(now.UnixMilli(), 10) + "-" + uuid.NewString()[:8]
}

// history is the context prompt, the model's acknowledgement, the welcome
// message, and then the session so far.
func (c *Companion) history(chatCtx ChatContext, prior []models.Message) []ai.ChatTurn {
	turns := make([]ai.ChatTurn, 0, len(prior)+3)
	turns = append(turns,
		ai.ChatTurn{Role: ai.RoleUser, Parts: []string{contextPrompt(chatCtx)}},
		ai.ChatTurn{Role: ai.RoleModel, Parts: []string{acknowledgement}},
		ai.ChatTurn{Role: ai.RoleModel, Parts: []string{chatCtx.Personality.WelcomeMessage()}},
	)
	for _, m := range prior {
		role := ai.RoleModel
		if m.IsUser {
			role = ai.RoleUser
		}
		turns = append(turns, ai.ChatTurn{Role: role, Parts: []string{m.Text}})
	}
	return turns
}

func contextPrompt(chatCtx ChatContext) string {
	mood := chatCtx.Mood
	if mood == "" {
		mood = "Not specified"
	}
	therapy := chatCtx.Therapy
	if therapy == "" {
		therapy = "General chat"
	}
	started := ""
	if !chatCtx.SessionStart.IsZero() {
		started = chatCtx.SessionStart.Format("3:04:05 PM")
	}

	var sb strings.Builder
	sb.WriteString(chatCtx.Personality.profile().prompt)
	sb.WriteString("\n\nCurrent context:\n")
	fmt.Fprintf(&sb, "- User's mood: %s\n", mood)
	fmt.Fprintf(&sb, "- Therapy session: %s\n", therapy)
	fmt.Fprintf(&sb, "- Session started: %s\n", started)
	sb.WriteString("\nPlease respond as Bestie, maintaining your personality while being helpful and supportive. Keep responses conversational and under 200 words.")
	return sb.String()
}
