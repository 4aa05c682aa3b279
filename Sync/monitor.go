package Sync

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"Dayboard/Models"

	"gorm.io/gorm"
)

// TasksCacheTag prefixes every cached task definition query. The monitor
// invalidates this tag when the task collection changes.
const TasksCacheTag = "TASKS"

// DefaultInterval matches the ten second cadence the board client polls at.
const DefaultInterval = 10 * time.Second

// serverSession keys the background loop's own monitor. It never collides
// with a client session id (those are decimal user ids), so server-side
// polling cannot consume a change report a client has not seen yet.
const serverSession = "!server"

// FetchFunc retrieves the raw change feed for a collection, scoped by the
// active filter, starting from the given token (empty on the first call).
type FetchFunc func(lastToken string) (string, error)

// Monitor is the per-session, per-collection change detection state
// machine. Only one poll may be in flight at a time; a check that would
// overlap an outstanding one reports no change instead of interleaving
// token updates.
type Monitor struct {
	mu       sync.Mutex
	inFlight bool
	state    TokenState
	fetch    FetchFunc
}

func NewMonitor(fetch FetchFunc) *Monitor {
	return &Monitor{fetch: fetch}
}

// Check performs a single poll cycle. Fetch errors are logged and swallowed
// so one failed poll never terminates the polling loop.
func (m *Monitor) Check() bool {
	m.mu.Lock()
	if m.inFlight {
		m.mu.Unlock()
		return false
	}
	m.inFlight = true
	token := m.state.LastToken
	m.mu.Unlock()

	raw, err := m.fetch(token)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if err != nil {
		log.Printf("Change check failed: %v", err)
		return false
	}
	return ProcessChangeResult(raw, &m.state)
}

// sessionState tracks one polling client: its last filter and whether its
// tab currently reports itself hidden.
type sessionState struct {
	suspended   bool
	suspendedAt time.Time
	lastDate    string
	lastUserIDs []uint
}

// monitorEntry pairs a monitor with the filter date it serves, so per-day
// monitors can be evicted once their day has passed.
type monitorEntry struct {
	monitor *Monitor
	date    string
}

// Service owns the change monitors, the task definition cache, and the
// background polling loop that keeps the cache honest between client polls.
// Monitors are keyed per client session: each session carries its own token
// state, so one client's poll never consumes another's change report.
type Service struct {
	db       *gorm.DB
	Cache    *Cache
	interval time.Duration

	mu       sync.Mutex
	monitors map[string]*monitorEntry
	sessions map[string]*sessionState

	stop chan struct{}
}

func NewService(db *gorm.DB, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{
		db:       db,
		Cache:    NewCache(),
		interval: interval,
		monitors: make(map[string]*monitorEntry),
		sessions: make(map[string]*sessionState),
		stop:     make(chan struct{}),
	}
}

func filterKey(session, collection, date string, userIDs []uint) string {
	ids := make([]string, len(userIDs))
	sorted := append([]uint(nil), userIDs...)
	sort.Slice(sorted, func(a, b int) bool { return sorted[a] < sorted[b] })
	for i, id := range sorted {
		ids[i] = fmt.Sprint(id)
	}
	return session + "|" + collection + "|" + date + "|" + strings.Join(ids, ",")
}

func (s *Service) monitorFor(session, collection, date string, userIDs []uint) *Monitor {
	key := filterKey(session, collection, date, userIDs)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.monitors[key]; ok {
		return e.monitor
	}
	s.evictStaleLocked()
	filter := Models.ChangeFilter{UserIDs: userIDs, Date: date}
	m := NewMonitor(func(token string) (string, error) {
		return Models.ChangesSince(s.db, collection, filter, token)
	})
	s.monitors[key] = &monitorEntry{monitor: m, date: date}
	return m
}

// evictStaleLocked drops per-day monitors whose date has passed. Date-less
// monitors (the task definition feeds) live as long as the service.
func (s *Service) evictStaleLocked() {
	today := time.Now().Format(Models.DateLayout)
	for key, e := range s.monitors {
		if e.date != "" && e.date < today {
			delete(s.monitors, key)
		}
	}
}

func (s *Service) sessionLocked(session string) *sessionState {
	st, ok := s.sessions[session]
	if !ok {
		st = &sessionState{}
		s.sessions[session] = st
	}
	return st
}

// DidTasksChange polls the task definition feed for one client session. A
// detected change invalidates the definition cache before the next fetch
// can hit it. The first poll per session only establishes a baseline.
func (s *Service) DidTasksChange(session string, userIDs []uint) bool {
	s.mu.Lock()
	st := s.sessionLocked(session)
	st.lastUserIDs = append([]uint(nil), userIDs...)
	s.mu.Unlock()

	changed := s.monitorFor(session, Models.CollectionTasks, "", userIDs).Check()
	if changed {
		s.Cache.Invalidate(TasksCacheTag)
	}
	return changed
}

// DidTaskLogsChange polls the task log feed for one client session, scoped
// by date and users.
func (s *Service) DidTaskLogsChange(session, date string, userIDs []uint) bool {
	s.mu.Lock()
	st := s.sessionLocked(session)
	st.lastDate = date
	st.lastUserIDs = append([]uint(nil), userIDs...)
	s.mu.Unlock()

	return s.monitorFor(session, Models.CollectionTaskLogs, date, userIDs).Check()
}

// Start launches the background polling loop. The loop watches the task
// feed through its own reserved monitor, never a client's, so its polls
// cannot swallow a change report before the client sees it. Its only job is
// dropping stale cache entries between client polls.
func (s *Service) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				if s.allSuspended() {
					continue
				}
				if s.monitorFor(serverSession, Models.CollectionTasks, "", nil).Check() {
					s.Cache.Invalidate(TasksCacheTag)
				}
			}
		}
	}()
}

// allSuspended reports whether every known client session is hidden.
func (s *Service) allSuspended() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sessions) == 0 {
		return false
	}
	for _, st := range s.sessions {
		if !st.suspended {
			return false
		}
	}
	return true
}

// Stop shuts down the background loop. No timers survive the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
}

// Suspend pauses one session's polling while its tab is hidden. Other
// sessions keep polling.
func (s *Service) Suspend(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.sessionLocked(session)
	if !st.suspended {
		st.suspended = true
		st.suspendedAt = time.Now()
	}
}

// Resume restarts one session's polling. If the suspension outlasted the
// poll interval, an immediate catch-up check runs against the session's own
// monitors and the results are returned, so a change that landed while the
// tab was hidden reaches the resuming client instead of being consumed
// server side.
func (s *Service) Resume(session string) (tasksChanged, logsChanged bool) {
	s.mu.Lock()
	st := s.sessionLocked(session)
	if !st.suspended {
		s.mu.Unlock()
		return false, false
	}
	st.suspended = false
	elapsed := time.Since(st.suspendedAt)
	date, userIDs := st.lastDate, st.lastUserIDs
	s.mu.Unlock()

	if elapsed > s.interval && len(userIDs) > 0 {
		tasksChanged = s.DidTasksChange(session, userIDs)
		if date != "" {
			logsChanged = s.DidTaskLogsChange(session, date, userIDs)
		}
	}
	return tasksChanged, logsChanged
}
