package feed

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/zrn-ns/curacast/internal/fileutil"
	"github.com/zrn-ns/curacast/internal/logging"
)

// State holds the in-memory view of the published feed, backed by the XML
// document on disk.
type State struct {
	mu      sync.Mutex
	path    string
	channel Channel
	items   []Item
	logger  *slog.Logger
}

// Load reads publication state back from path. A missing file starts an
// empty feed. A malformed file is logged and also starts empty: losing
// feed history is recoverable, refusing to run is not.
func Load(path string, channel Channel, logger *slog.Logger) *State {
	s := &State{
		path:    path,
		channel: channel,
		logger:  logging.NewComponentLogger(logger, "feed"),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		s.logger.Info("no existing feed, starting empty", logging.String("path", path))
		return s
	}
	if err != nil {
		s.logger.Warn("feed unreadable, starting empty", logging.String("path", path), logging.Error(err))
		return s
	}

	items, err := decodeItems(data)
	if err != nil {
		s.logger.Warn("feed malformed, starting empty",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "previous feed entries will be lost on next publish"),
		)
		return s
	}

	s.items = items
	s.logger.Info("feed loaded", logging.String("path", path), logging.Int("items", len(items)))
	return s
}

// Publish appends the item and rewrites the document atomically. An item
// whose GUID is already present leaves the feed untouched.
func (s *State) Publish(item Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.items {
		if existing.GUID == item.GUID {
			s.logger.Info("episode already in feed, skipping publish", logging.String("guid", item.GUID))
			return nil
		}
	}

	updated := append(append([]Item{}, s.items...), item)
	if err := s.writeLocked(updated); err != nil {
		return err
	}
	s.items = updated
	s.logger.Info("episode published",
		logging.String("guid", item.GUID),
		logging.String("title", item.Title),
		logging.Int("items", len(s.items)),
	)
	return nil
}

// Items returns a copy of the published entries in publication order.
func (s *State) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item{}, s.items...)
}

// Contains reports whether an episode GUID is already published.
func (s *State) Contains(guid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.GUID == guid {
			return true
		}
	}
	return false
}

func (s *State) writeLocked(items []Item) error {
	data, err := encodeDocument(s.channel, items)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(s.path, data, 0o644); err != nil {
		return fmt.Errorf("persist feed: %w", err)
	}
	return nil
}
