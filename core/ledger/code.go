package ledger

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"CupBack/logger"

	"github.com/fsnotify/fsnotify"
)

// ErrInvalidCode is returned when a QR payload matches no allow-list entry.
// The wrapped message carries the normalized payload so the user can see what
// the camera actually read.
var ErrInvalidCode = errors.New("invalid QR code")

// CodeValidator holds the QR allow-list. The list can be replaced at runtime
// when a codes file is configured and changes on disk.
type CodeValidator struct {
	mu    sync.RWMutex
	codes []string
}

// NewCodeValidator creates a validator with an initial allow-list.
func NewCodeValidator(codes []string) *CodeValidator {
	return &CodeValidator{codes: append([]string(nil), codes...)}
}

// NormalizeCode cleans a raw QR payload: trim, upper-case, and drop every
// character outside [A-Z0-9-]. Camera reads often arrive with stray
// whitespace or newlines.
func NormalizeCode(raw string) string {
	clean := strings.ToUpper(strings.TrimSpace(raw))
	var b strings.Builder
	b.Grow(len(clean))
	for _, c := range clean {
		if (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Validate normalizes raw and checks it against the allow-list. A code is
// accepted when it equals, contains, or is contained in any entry; substring
// matching is deliberately permissive to tolerate camera misreads. Returns
// the normalized code either way.
func (v *CodeValidator) Validate(raw string) (string, error) {
	clean := NormalizeCode(raw)
	if clean == "" {
		return clean, fmt.Errorf("%w: empty payload", ErrInvalidCode)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()
	for _, valid := range v.codes {
		if clean == valid || strings.Contains(clean, valid) || strings.Contains(valid, clean) {
			return clean, nil
		}
	}
	return clean, fmt.Errorf("%w: %s", ErrInvalidCode, clean)
}

// Codes returns a copy of the current allow-list.
func (v *CodeValidator) Codes() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return append([]string(nil), v.codes...)
}

// LoadFromFile replaces the allow-list with the contents of path, one code
// per line, blank lines and #-comments skipped. An empty file is rejected so
// a truncated write cannot disable scanning.
func (v *CodeValidator) LoadFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open codes file: %w", err)
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, NormalizeCode(line))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read codes file: %w", err)
	}
	if len(codes) == 0 {
		return fmt.Errorf("codes file %s contains no codes", path)
	}

	v.mu.Lock()
	v.codes = codes
	v.mu.Unlock()
	return nil
}

// Watch loads path and reloads it whenever it changes, until stop is closed.
// Reload failures keep the previous list.
func (v *CodeValidator) Watch(path string, stop <-chan struct{}) error {
	if err := v.LoadFromFile(path); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create codes watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch codes file: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if err := v.LoadFromFile(path); err != nil {
					logger.Warn("[Codes] reload failed, keeping previous allow-list",
						logger.String("path", path),
						logger.ErrorField(err))
					continue
				}
				logger.Info("[Codes] allow-list reloaded",
					logger.String("path", path),
					logger.Int("count", len(v.Codes())))
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("[Codes] watcher error", logger.ErrorField(err))
			}
		}
	}()
	return nil
}
