/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import "time"

const DefaultTitle = "Trivia & Chill"

// Quiz is an immutable snapshot of the loaded quiz content. A reload replaces
// the whole snapshot; nothing mutates one after it has been handed to the engine.
type Quiz struct {
	Title      string      `yaml:"title"`
	Categories []Category  `yaml:"categories"`
	Emoji      *EmojiRules `yaml:"emoji"`
	Typewriter *Typewriter `yaml:"typewriter"`
	Game       *GameRules  `yaml:"game"`
}

type Category struct {
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions"`
}

type Question struct {
	Value           int    `yaml:"value"`
	Question        string `yaml:"question"`
	Answer          string `yaml:"answer"`
	QuestionImage   string `yaml:"questionImage"`
	QuestionYoutube string `yaml:"questionYoutube"`
	AnswerImage     string `yaml:"answerImage"`
	AnswerYoutube   string `yaml:"answerYoutube"`
}

// EmojiRules is the optional reaction economy section. Nil fields fall back
// to the defaults in EmojiSettings.
type EmojiRules struct {
	Cost              *int  `yaml:"cost"`
	AllowNegative     *bool `yaml:"allowNegative"`
	MaxActive         *int  `yaml:"maxActive"`
	CooldownMs        *int  `yaml:"cooldownMs"`
	DisplayDurationMs *int  `yaml:"displayDurationMs"`
}

type Typewriter struct {
	Enabled            bool `yaml:"enabled" json:"enabled"`
	SpeedMsPerChar     int  `yaml:"speedMsPerChar" json:"speedMsPerChar"`
	DelayBeforeMediaMs int  `yaml:"delayBeforeMediaMs" json:"delayBeforeMediaMs"`
}

type GameRules struct {
	BuzzerLockedAtStart   bool `yaml:"buzzerLockedAtStart" json:"buzzerLockedAtStart"`
	DelayBeforeQuestionMs int  `yaml:"delayBeforeQuestionMs,omitempty" json:"delayBeforeQuestionMs,omitempty"`
}

// EmojiSettings is the resolved reaction economy.
type EmojiSettings struct {
	Cost            int  `json:"cost"`
	AllowNegative   bool `json:"allowNegative"`
	MaxActive       int  `json:"maxActive"`
	CooldownMs      int  `json:"cooldownMs"`
	DisplayDuration int  `json:"displayDurationMs"`
}

func (s EmojiSettings) cooldown() time.Duration {
	return time.Duration(s.CooldownMs) * time.Millisecond
}

func (s EmojiSettings) displayDuration() time.Duration {
	return time.Duration(s.DisplayDuration) * time.Millisecond
}

func DefaultEmojiSettings() EmojiSettings {
	return EmojiSettings{
		Cost:            10,
		AllowNegative:   false,
		MaxActive:       5,
		CooldownMs:      5000,
		DisplayDuration: 4000,
	}
}

// EmojiSettings resolves the reaction economy, applying defaults for anything
// the quiz file leaves out. It is safe to call on a nil Quiz.
func (q *Quiz) EmojiSettings() EmojiSettings {
	s := DefaultEmojiSettings()
	if q == nil || q.Emoji == nil {
		return s
	}

	if q.Emoji.Cost != nil {
		s.Cost = *q.Emoji.Cost
	}
	if q.Emoji.AllowNegative != nil {
		s.AllowNegative = *q.Emoji.AllowNegative
	}
	if q.Emoji.MaxActive != nil {
		s.MaxActive = *q.Emoji.MaxActive
	}
	if q.Emoji.CooldownMs != nil {
		s.CooldownMs = *q.Emoji.CooldownMs
	}
	if q.Emoji.DisplayDurationMs != nil {
		s.DisplayDuration = *q.Emoji.DisplayDurationMs
	}

	return s
}

func (q *Quiz) TypewriterSettings() Typewriter {
	t := Typewriter{SpeedMsPerChar: 30, DelayBeforeMediaMs: 300}
	if q == nil || q.Typewriter == nil {
		return t
	}

	t.Enabled = q.Typewriter.Enabled
	if q.Typewriter.SpeedMsPerChar > 0 {
		t.SpeedMsPerChar = q.Typewriter.SpeedMsPerChar
	}
	if q.Typewriter.DelayBeforeMediaMs > 0 {
		t.DelayBeforeMediaMs = q.Typewriter.DelayBeforeMediaMs
	}

	return t
}

func (q *Quiz) GameSettings() GameRules {
	if q == nil || q.Game == nil {
		return GameRules{}
	}
	return *q.Game
}

// Lookup finds a question by category name and point value.
func (q *Quiz) Lookup(category string, value int) (Question, bool) {
	if q == nil {
		return Question{}, false
	}

	for _, c := range q.Categories {
		if c.Name != category {
			continue
		}
		for _, question := range c.Questions {
			if question.Value == value {
				return question, true
			}
		}
		return Question{}, false
	}

	return Question{}, false
}

// QuizSource supplies quiz snapshots. Load is called once at start and again on
// every reload; each call must return a fresh snapshot.
type QuizSource interface {
	Load() (*Quiz, error)
}
