package workers

import (
	"log"

	"github.com/axellelanca/linkbio/internal/models"
	"github.com/axellelanca/linkbio/internal/repository"
)

// StartClickWorkers launches a pool of worker goroutines to persist click
// audit events asynchronously. This keeps the redirect path free of any
// database write beyond the counter update itself.
// Parameters:
//   - workerCount: number of concurrent workers to spawn
//   - clickEventsChan: channel that receives click events to be processed
//   - clickRepo: repository interface for persisting clicks to database
func StartClickWorkers(workerCount int, clickEventsChan <-chan models.ClickEvent, clickRepo repository.ClickRepository) {
	log.Printf("Starting %d click worker(s)...", workerCount)

	// Each worker listens on the same channel and processes events concurrently
	for i := 0; i < workerCount; i++ {
		go clickWorker(clickEventsChan, clickRepo)
	}
}

// clickWorker is the function executed by each worker goroutine.
// It exits when the channel is closed.
func clickWorker(clickEventsChan <-chan models.ClickEvent, clickRepo repository.ClickRepository) {
	for event := range clickEventsChan {
		click := &models.Click{
			ProfileID: event.ProfileID,
			LinkIndex: event.LinkIndex,
			Timestamp: event.Timestamp,
			UserAgent: event.UserAgent,
			IPAddress: event.IPAddress,
		}

		// Log and continue on failure; audit rows are best-effort
		if err := clickRepo.CreateClick(click); err != nil {
			log.Printf("ERROR: Failed to save click for profile %s (link %d): %v",
				event.ProfileID, event.LinkIndex, err)
		}
	}
}
