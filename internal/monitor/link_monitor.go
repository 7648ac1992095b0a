package monitor

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/axellelanca/linkbio/internal/models"
	"github.com/axellelanca/linkbio/internal/repository"
)

// LinkMonitor manages periodic monitoring of every link target referenced by
// the stored profiles. It maintains a state map to track reachability changes
// and logs a notification when a target flips state.
type LinkMonitor struct {
	profileRepo repository.ProfileRepository // Repository to fetch all profiles from database
	interval    time.Duration                // How often to check link targets
	knownStates map[string]bool              // Cache of previous states ("profileID/idx" -> reachable)
	mu          sync.Mutex                   // Protects concurrent access to knownStates map
	httpClient  *http.Client                 // HTTP client for making requests
}

// NewLinkMonitor creates and returns a new instance of LinkMonitor.
// interval determines how frequently link targets will be checked.
func NewLinkMonitor(profileRepo repository.ProfileRepository, interval time.Duration) *LinkMonitor {
	return &LinkMonitor{
		profileRepo: profileRepo,
		interval:    interval,
		knownStates: make(map[string]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches the periodic monitoring loop.
// This is a blocking function that runs indefinitely until the program stops.
func (m *LinkMonitor) Start() {
	log.Printf("[MONITOR] Starting link monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Immediate check on startup before waiting for the first tick
	m.checkLinks()

	for range ticker.C {
		m.checkLinks()
	}
}

// checkLinks performs a reachability check on every link of every profile.
// It compares current state with previous state and logs any changes.
func (m *LinkMonitor) checkLinks() {
	log.Println("[MONITOR] Starting link status verification...")

	profiles, err := m.profileRepo.GetAllProfiles()
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving profiles for monitoring: %v", err)
		return
	}

	for _, profile := range profiles {
		for idx, link := range models.DecodeLinks(profile.Data) {
			currentState := m.isURLAccessible(link.URL)
			key := fmt.Sprintf("%s/%d", profile.ID, idx)

			m.mu.Lock()
			previousState, exists := m.knownStates[key]
			m.knownStates[key] = currentState
			m.mu.Unlock()

			// First sighting of this link: only record the initial state
			if !exists {
				log.Printf("[MONITOR] Initial state for link %s (%s): %s",
					key, link.URL, formatState(currentState))
				continue
			}

			if currentState != previousState {
				log.Printf("[NOTIFICATION] Link %s (%s) changed from %s to %s!",
					key, link.URL, formatState(previousState), formatState(currentState))
			}
		}
	}
	log.Println("[MONITOR] Link status verification completed.")
}

// isURLAccessible performs an HTTP HEAD request to check if a URL is accessible.
// Returns true if the URL responds with a 2xx or 3xx status code.
func (m *LinkMonitor) isURLAccessible(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// HEAD is enough, we don't need the response body
	req, err := http.NewRequestWithContext(ctx, "HEAD", url, nil)
	if err != nil {
		log.Printf("[MONITOR] Error creating request for URL '%s': %v", url, err)
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		log.Printf("[MONITOR] Error accessing URL '%s': %v", url, err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

// formatState converts the boolean reachability state to a readable string.
func formatState(accessible bool) string {
	if accessible {
		return "ACCESSIBLE"
	}
	return "INACCESSIBLE"
}
