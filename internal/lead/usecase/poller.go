package usecase

import (
	"context"
	"log"
	"time"
)

// Poller periodically drains the lead mailbox into the CRM.
type Poller struct {
	usecase  LeadUsecase
	interval time.Duration
	stopChan chan struct{}
}

// NewPoller creates a mailbox poller. intervalMinutes below 1 falls
// back to 5.
func NewPoller(usecase LeadUsecase, intervalMinutes int) *Poller {
	if intervalMinutes < 1 {
		intervalMinutes = 5
	}
	return &Poller{
		usecase:  usecase,
		interval: time.Duration(intervalMinutes) * time.Minute,
		stopChan: make(chan struct{}),
	}
}

func (p *Poller) Start() {
	log.Printf("[LeadPoller] Started, polling every %v", p.interval)
	go func() {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.poll()
			case <-p.stopChan:
				log.Println("[LeadPoller] Stopped")
				return
			}
		}
	}()
}

func (p *Poller) Stop() {
	close(p.stopChan)
}

func (p *Poller) poll() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LeadPoller] Recovered from panic: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if _, err := p.usecase.IngestFromMailbox(ctx); err != nil {
		log.Printf("[LeadPoller] Mailbox ingestion failed: %v", err)
	}
}
