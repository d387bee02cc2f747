// Package state keeps the daemon runtime state, the unit on/off flags,
// the presence and the sticky lights, persisted as one JSON file.
package state

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/homewire/x10/internal/pkg/encoding/json"
	"github.com/homewire/x10/internal/pkg/filesystem"
	"github.com/homewire/x10/internal/pkg/log"
	"github.com/homewire/x10/internal/pkg/utils/errors"
)

// UnitState is the last commanded state of one unit.
type UnitState struct {
	On        bool      `json:"on"`
	ChangedAt time.Time `json:"changedAt"`
	Origin    string    `json:"origin"`
}

// Presence of the home, switched by the arrive/leave control commands.
type Presence struct {
	Home      bool      `json:"home"`
	Person    string    `json:"person,omitempty"`
	ChangedAt time.Time `json:"changedAt"`
}

type content struct {
	Units    map[string]UnitState `json:"units"`
	Presence Presence             `json:"presence"`
	Sticky   []string             `json:"sticky"`
}

// Store loads and persists the state file.
// Every mutation is written to the disk, a temp file is renamed over
// the previous version so a crash cannot leave a half written state.
type Store struct {
	logger log.Logger
	clock  clockwork.Clock
	fs     filesystem.Fs
	path   string

	lock    sync.Mutex
	content content
}

func NewStore(logger log.Logger, clock clockwork.Clock, fs filesystem.Fs, path string) *Store {
	s := &Store{logger: logger, clock: clock, fs: fs, path: path}
	s.content = content{Units: make(map[string]UnitState), Sticky: make([]string, 0)}

	if fs.IsFile(path) {
		loaded := content{}
		def := filesystem.NewFileDef(path).SetDescription("state")
		if err := fs.ReadJsonFileTo(def, &loaded); err != nil {
			// The daemon must boot even over a damaged state file
			logger.Warnf(`Cannot load the state file, starting empty: %s`, err)
		} else {
			if loaded.Units == nil {
				loaded.Units = make(map[string]UnitState)
			}
			if loaded.Sticky == nil {
				loaded.Sticky = make([]string, 0)
			}
			s.content = loaded
		}
	}
	return s
}

func (s *Store) Unit(slug string) (UnitState, bool) {
	s.lock.Lock()
	defer s.lock.Unlock()
	v, found := s.content.Units[slug]
	return v, found
}

// Units returns a copy of the unit states, keyed by the unit slug.
func (s *Store) Units() map[string]UnitState {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make(map[string]UnitState, len(s.content.Units))
	for k, v := range s.content.Units {
		out[k] = v
	}
	return out
}

// OnUnits lists the units that are currently on, sorted by the slug.
func (s *Store) OnUnits() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]string, 0)
	for slug, unit := range s.content.Units {
		if unit.On {
			out = append(out, slug)
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) SetUnit(slug string, on bool, origin string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.content.Units[slug] = UnitState{On: on, ChangedAt: s.clock.Now().UTC(), Origin: origin}
	return s.save()
}

func (s *Store) Presence() Presence {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.content.Presence
}

func (s *Store) IsHome() bool {
	return s.Presence().Home
}

func (s *Store) SetPresence(home bool, person string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.content.Presence = Presence{Home: home, Person: person, ChangedAt: s.clock.Now().UTC()}
	return s.save()
}

// Sticky lists the units to restore on the next arrive.
func (s *Store) Sticky() []string {
	s.lock.Lock()
	defer s.lock.Unlock()
	out := make([]string, len(s.content.Sticky))
	copy(out, s.content.Sticky)
	return out
}

func (s *Store) SetSticky(slugs []string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.content.Sticky = make([]string, len(slugs))
	copy(s.content.Sticky, slugs)
	return s.save()
}

// save must be called with the lock held.
func (s *Store) save() error {
	encoded, err := json.EncodeString(s.content, true)
	if err != nil {
		return errors.PrefixError(err, "cannot encode the state")
	}

	tmpPath := s.path + ".tmp"
	if err := s.fs.WriteFile(filesystem.NewRawFile(tmpPath, encoded+"\n").SetDescription("state")); err != nil {
		return err
	}
	return s.fs.MoveForce(tmpPath, s.path)
}
