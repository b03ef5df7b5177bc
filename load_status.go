package main

import (
	"sync"
	"time"
)

type fileState string

const (
	fileLoaded  fileState = "loaded"
	fileSkipped fileState = "skipped"
	fileFailed  fileState = "failed"
)

type loadStatus struct {
	Sources map[string]sourceStatus `json:"sources"`
}

type sourceStatus struct {
	Directory string                `json:"directory"`
	Watching  bool                  `json:"watching"`
	LastScan  *time.Time            `json:"lastScan"`
	Files     map[string]fileStatus `json:"files"`
}

type fileStatus struct {
	State       fileState       `json:"state"`
	Records     int             `json:"records"`
	Fingerprint fileFingerprint `json:"fingerprint"`
	Error       string          `json:"error,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type loadStatusManager struct {
	status loadStatus
	lock   sync.Mutex
}

func newLoadStatusManager(sources []sourceConfig) *loadStatusManager {
	v := &loadStatusManager{
		status: loadStatus{
			Sources: make(map[string]sourceStatus),
		},
	}

	for _, s := range sources {
		v.status.Sources[s.Id] = sourceStatus{
			Directory: s.Directory,
			Files:     make(map[string]fileStatus),
		}
	}

	return v
}

func (i *loadStatusManager) updateFile(sourceId string, path string, status fileStatus) {
	i.lock.Lock()
	defer i.lock.Unlock()

	s := i.source(sourceId)
	s.Files[path] = status
	i.status.Sources[sourceId] = s
}

func (i *loadStatusManager) markScanned(sourceId string, at time.Time) {
	i.lock.Lock()
	defer i.lock.Unlock()

	s := i.source(sourceId)
	s.LastScan = &at
	i.status.Sources[sourceId] = s
}

func (i *loadStatusManager) setWatching(sourceId string, watching bool) {
	i.lock.Lock()
	defer i.lock.Unlock()

	s := i.source(sourceId)
	s.Watching = watching
	i.status.Sources[sourceId] = s
}

// source must be called with the lock held.
func (i *loadStatusManager) source(sourceId string) sourceStatus {
	s, ok := i.status.Sources[sourceId]

	if !ok {
		s = sourceStatus{Files: make(map[string]fileStatus)}
	}

	return s
}

// get returns a copy that stays valid while loaders keep updating.
func (i *loadStatusManager) get() loadStatus {
	i.lock.Lock()
	defer i.lock.Unlock()

	c := loadStatus{
		Sources: make(map[string]sourceStatus, len(i.status.Sources)),
	}

	for id, s := range i.status.Sources {
		files := make(map[string]fileStatus, len(s.Files))

		for path, f := range s.Files {
			files[path] = f
		}

		s.Files = files
		c.Sources[id] = s
	}

	return c
}
