package artifact

import (
	"path/filepath"
	"sync"
)

// Artifact is a located output file. Dir is the directory the render ran in;
// a relative Path is resolved against it.
type Artifact struct {
	Path string
	Dir  string
}

// Abs returns where the file is on disk.
func (a Artifact) Abs() string {
	if filepath.IsAbs(a.Path) || a.Dir == "" {
		return a.Path
	}
	return filepath.Join(a.Dir, a.Path)
}

// Store holds the most recently located artifact. It is written by render
// pumps and read or cleared by the UI.
type Store struct {
	mu   sync.Mutex
	last Artifact
}

// Set overwrites the recorded artifact.
func (s *Store) Set(a Artifact) {
	s.mu.Lock()
	s.last = a
	s.mu.Unlock()
}

// Get returns the recorded path, or "" when none.
func (s *Store) Get() string {
	return s.Last().Path
}

// Last returns the recorded artifact.
func (s *Store) Last() Artifact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Take returns the recorded artifact and clears it.
func (s *Store) Take() (Artifact, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.last
	s.last = Artifact{}
	return a, a.Path != ""
}

// Restore puts a back unless a newer one was recorded meanwhile.
func (s *Store) Restore(a Artifact) {
	s.mu.Lock()
	if s.last.Path == "" {
		s.last = a
	}
	s.mu.Unlock()
}
