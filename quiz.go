/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Seednode/buzzer/games/trivia"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const reloadDebounce = 250 * time.Millisecond

// quizFile loads quiz snapshots from a YAML file on disk.
type quizFile struct {
	cfg  *Config
	path string
}

func newQuizFile(cfg *Config) *quizFile {
	return &quizFile{cfg: cfg, path: filepath.Clean(cfg.quiz)}
}

// Load reads and validates the quiz file. A missing file yields an empty board
// so the lobby still works; a malformed one is an error.
func (q *quizFile) Load() (*trivia.Quiz, error) {
	startTime := time.Now()

	data, err := os.ReadFile(q.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logf(q.cfg, "QUIZ: %s not found, starting with an empty board", q.path)

		return q.finish(&trivia.Quiz{}), nil
	case err != nil:
		return nil, err
	}

	quiz, err := parseQuiz(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", q.path, err)
	}

	logf(q.cfg, "QUIZ: Loaded %s (%s, %d categories) in %s",
		q.path,
		humanReadableSize(int64(len(data))),
		len(quiz.Categories),
		time.Since(startTime).Round(time.Microsecond),
	)

	return q.finish(quiz), nil
}

func (q *quizFile) finish(quiz *trivia.Quiz) *trivia.Quiz {
	if q.cfg.title != "" {
		quiz.Title = q.cfg.title
	}
	if quiz.Title == "" {
		quiz.Title = trivia.DefaultTitle
	}
	if quiz.Categories == nil {
		quiz.Categories = []trivia.Category{}
	}

	return quiz
}

func parseQuiz(data []byte) (*trivia.Quiz, error) {
	var quiz trivia.Quiz
	if err := yaml.Unmarshal(data, &quiz); err != nil {
		return nil, err
	}

	if err := validateQuiz(&quiz); err != nil {
		return nil, err
	}

	return &quiz, nil
}

func validateQuiz(quiz *trivia.Quiz) error {
	seen := make(map[string]bool, len(quiz.Categories))

	for i, c := range quiz.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return fmt.Errorf("category %d has no name", i+1)
		}
		if seen[name] {
			return fmt.Errorf("category %q appears more than once", name)
		}
		seen[name] = true

		values := make(map[int]bool, len(c.Questions))
		for _, question := range c.Questions {
			if question.Value <= 0 {
				return fmt.Errorf("category %q has a question with non-positive value %d", name, question.Value)
			}
			if values[question.Value] {
				return fmt.Errorf("category %q has more than one %d question", name, question.Value)
			}
			values[question.Value] = true
		}
	}

	return nil
}

// watchQuiz reloads the engine whenever the quiz file changes. The parent
// directory is watched so editors that replace the file by rename are caught.
func watchQuiz(ctx context.Context, cfg *Config, path string, engine *trivia.Engine, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return err
	}

	logf(cfg, "QUIZ: Watching %s for changes", path)

	go func() {
		defer watcher.Close()

		var pending <-chan time.Time
		last := stampFile(path)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				pending = time.After(reloadDebounce)

			case <-pending:
				pending = nil

				current := stampFile(path)
				if !current.changed(last) {
					continue
				}
				last = current

				if err := engine.ReloadQuiz(); err == nil {
					logf(cfg, "QUIZ: Reloaded %s", path)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("quiz watcher error", "error", err)
			}
		}
	}()

	return nil
}
