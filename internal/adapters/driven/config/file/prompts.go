package file

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/lexrag/internal/core/ports/driven"
	"github.com/custodia-labs/lexrag/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads LLM prompts from user-editable files on disk,
// falling back to built-in defaults.
//
// Nothing is written until the first Load, which seeds the directory
// with the defaults so users have something to edit.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// promptSpec is a built-in prompt and the number of %s verbs it takes.
type promptSpec struct {
	text         string
	placeholders int
}

var defaultPrompts = map[string]promptSpec{
	driven.PromptGrounded: {
		placeholders: 1,
		text: `You are a legal research assistant. Answer the question using only the documents in the context below.

Rules:
- Cite the document for every statement as [n], where n is the block's position in the context.
- Quote clause wording when it matters; do not paraphrase obligations loosely.
- If the context does not answer the question, say so plainly.

Context:
%s`,
	},
	driven.PromptNoContext: {
		text: `You are a legal research assistant. No stored document matched this question, so there is no context to rely on.

Tell the user that nothing in their documents covers it. You may give general background, but label it as such and never invent citations or clause text.`,
	},
}

// NewPromptStore creates a file-based prompt store in promptDir, which
// defaults to ~/.lexrag/prompts.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the template for name. A user file with the wrong number
// of %s verbs is ignored in favour of the default.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := defaultPrompts[name]
	if !known {
		return "", fmt.Errorf("unknown prompt %q", name)
	}

	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		return def.text, nil
	}

	s.mu.RLock()
	prompt, ok := s.cache[name]
	s.mu.RUnlock()
	if ok {
		return prompt, nil
	}

	prompt, err := s.loadFromFile(name)
	switch {
	case err != nil:
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("prompt %s: %v, using default", name, err)
		}
		prompt = def.text
	case strings.Count(prompt, "%s") != def.placeholders:
		logger.Warn("prompt %s must contain %d %%s placeholder(s), using default", name, def.placeholders)
		prompt = def.text
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		logger.Warn("%v, using built-in prompts", s.initErr)
		return
	}

	for name, def := range defaultPrompts {
		path := s.path(name)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(def.text+"\n"), 0o600); err != nil {
			s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
			return
		}
	}
}

func (s *PromptStore) path(name string) string {
	return filepath.Join(s.promptDir, name+".txt")
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
