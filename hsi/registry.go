package hsi

import (
	"sync"
)

// Process-wide registry of live sessions, so an exit path can drain any
// held access windows even on abnormal termination.  The instrument
// stops acquiring while a window is open; leaking one hangs the scope.
var (
	registryMu sync.Mutex
	registry   = map[string]*Session{}
)

func addSession(s *Session) {
	registryMu.Lock()
	registry[s.clientname] = s
	registryMu.Unlock()
}

func removeSession(s *Session) {
	registryMu.Lock()
	delete(registry, s.clientname)
	registryMu.Unlock()
}

// CloseAll finishes any held data-access window and closes every live
// session.  Call it from the end of main or a signal handler; it
// suppresses every error on the way down.
func CloseAll() {
	registryMu.Lock()
	live := make([]*Session, 0, len(registry))
	for _, s := range registry {
		live = append(live, s)
	}
	registryMu.Unlock()

	for _, s := range live {
		if s.holdingScope.Load() {
			s.finishedWithDataAccess()
		}
		s.Close()
	}
}
