/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

// Outbound event names.
const (
	EventGameState        = "gameState"
	EventGameConfig       = "gameConfig"
	EventFullQuestion     = "fullQuestion"
	EventBuzzerSound      = "buzzerSound"
	EventHostConfirmed    = "hostConfirmed"
	EventHostLeft         = "hostLeft"
	EventJoinError        = "joinError"
	EventUpdateUsername   = "updateUsername"
	EventHostNotification = "hostNotification"
	EventEmojiReaction    = "emojiReaction"
	EventEmojiStatus      = "emojiStatus"
)

// Message is one outbound frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Transport delivers frames. Both methods must return without waiting on the
// network; delivery is best effort.
type Transport interface {
	Send(id ConnID, msg Message)
	Broadcast(msg Message)
}

// PlayerView is the public projection of a Player. The canonical key and the
// ledger behind it are never sent.
type PlayerView struct {
	ID        ConnID `json:"id"`
	Name      string `json:"name"`
	Score     int    `json:"score"`
	Connected bool   `json:"connected"`
}

// StateView is the public game state sent to every connection. It carries the
// current category and value only; prompt and answer stay host-side.
type StateView struct {
	Players               []PlayerView `json:"players"`
	CurrentCategory       *string      `json:"currentCategory"`
	CurrentValue          *int         `json:"currentValue"`
	AnsweredQuestions     []string     `json:"answeredQuestions"`
	BuzzerOrder           []BuzzEvent  `json:"buzzerOrder"`
	BuzzerLocked          bool         `json:"buzzerLocked"`
	GamePhase             Phase        `json:"gamePhase"`
	ShowAnswer            bool         `json:"showAnswer"`
	ScoringEnabled        bool         `json:"scoringEnabled"`
	NegativeScoresEnabled bool         `json:"negativeScoresEnabled"`
	BuzzerLockedAtStart   bool         `json:"buzzerLockedAtStart"`
	HostConnected         bool         `json:"hostConnected"`
}

// QuestionView is the full question, for host connections only.
type QuestionView struct {
	Category        string `json:"category"`
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	Value           int    `json:"value"`
	QuestionImage   string `json:"questionImage,omitempty"`
	QuestionYoutube string `json:"questionYoutube,omitempty"`
	AnswerImage     string `json:"answerImage,omitempty"`
	AnswerYoutube   string `json:"answerYoutube,omitempty"`
}

type ConfigView struct {
	Title      string         `json:"title"`
	Categories []CategoryView `json:"categories"`
	Emoji      EmojiSettings  `json:"emoji"`
	Typewriter Typewriter     `json:"typewriter"`
	Game       GameRules      `json:"game"`
}

type CategoryView struct {
	Name      string      `json:"name"`
	Questions []ValueView `json:"questions"`
}

type ValueView struct {
	Value int `json:"value"`
}

type Ack struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type notification struct {
	Message string `json:"message"`
}

type joinError struct {
	Error string `json:"error"`
}

type usernameUpdate struct {
	NewUsername string `json:"newUsername"`
}

type buzzerSound struct {
	PlayerName string `json:"playerName"`
}

type reaction struct {
	PlayerName string `json:"playerName"`
	Emoji      string `json:"emoji"`
}

type emojiStatus struct {
	Active int `json:"active"`
	Max    int `json:"max"`
}

func projectState(l *Ledger, s *Session) StateView {
	players := l.Players()
	views := make([]PlayerView, 0, len(players))
	for _, p := range players {
		views = append(views, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.Connected,
		})
	}

	view := StateView{
		Players:               views,
		AnsweredQuestions:     s.Answered(),
		BuzzerOrder:           append([]BuzzEvent{}, s.BuzzerOrder...),
		BuzzerLocked:          s.BuzzerLocked,
		GamePhase:             s.Phase,
		ShowAnswer:            s.ShowAnswer,
		ScoringEnabled:        s.ScoringEnabled,
		NegativeScoresEnabled: s.NegativeScores,
		BuzzerLockedAtStart:   s.LockedAtStart,
		HostConnected:         s.HostConnected,
	}

	if s.Question != nil {
		category, value := s.Category, s.Question.Value
		view.CurrentCategory = &category
		view.CurrentValue = &value
	}

	return view
}

func projectQuestion(category string, q Question) QuestionView {
	return QuestionView{
		Category:        category,
		Question:        q.Question,
		Answer:          q.Answer,
		Value:           q.Value,
		QuestionImage:   q.QuestionImage,
		QuestionYoutube: q.QuestionYoutube,
		AnswerImage:     q.AnswerImage,
		AnswerYoutube:   q.AnswerYoutube,
	}
}

// projectConfig strips prompts and answers, keeping only what the board needs.
func projectConfig(q *Quiz) ConfigView {
	view := ConfigView{
		Title:      DefaultTitle,
		Categories: []CategoryView{},
		Emoji:      q.EmojiSettings(),
		Typewriter: q.TypewriterSettings(),
		Game:       q.GameSettings(),
	}
	if q == nil {
		return view
	}

	if q.Title != "" {
		view.Title = q.Title
	}
	for _, c := range q.Categories {
		values := make([]ValueView, 0, len(c.Questions))
		for _, question := range c.Questions {
			values = append(values, ValueView{Value: question.Value})
		}
		view.Categories = append(view.Categories, CategoryView{Name: c.Name, Questions: values})
	}

	return view
}

// broadcastStateLocked sends the public state to every connection.
func (e *Engine) broadcastStateLocked() {
	e.out.Broadcast(Message{Type: EventGameState, Data: projectState(e.ledger, e.session)})
}

func (e *Engine) broadcastConfigLocked() {
	e.out.Broadcast(Message{Type: EventGameConfig, Data: projectConfig(e.quiz.Load())})
}

func (e *Engine) broadcastEmojiStatusLocked() {
	e.out.Broadcast(Message{Type: EventEmojiStatus, Data: e.emojiStatusLocked()})
}

func (e *Engine) emojiStatusLocked() emojiStatus {
	return emojiStatus{Active: e.reactions.active, Max: e.quiz.Load().EmojiSettings().MaxActive}
}

// sendHostsLocked delivers msg to every connection holding the host claim.
func (e *Engine) sendHostsLocked(msg Message) {
	for id, c := range e.conns {
		if c.host {
			e.out.Send(id, msg)
		}
	}
}

func (e *Engine) notifyLocked(id ConnID, message string) {
	e.out.Send(id, Message{Type: EventHostNotification, Data: notification{Message: message}})
}
