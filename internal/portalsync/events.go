package portalsync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	notifdomain "propdesk-backend/internal/notification/domain"
	proprepo "propdesk-backend/internal/property/repository"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// ListingEvent is the message shape the portal pushes for listing state
// changes (verification verdicts, quality rescoring, publish flips).
type ListingEvent struct {
	ListingID          string  `json:"listingId"`
	Event              string  `json:"event"`
	VerificationStatus string  `json:"verificationStatus,omitempty"`
	QualityScore       float64 `json:"qualityScore,omitempty"`
	Published          *bool   `json:"published,omitempty"`
}

// EventService consumes portal listing events from a Pub/Sub subscription
// and applies them to local records, so verification verdicts show up
// between scheduled imports.
type EventService struct {
	pubsubClient *pubsub.Client
	properties   proprepo.PropertyRepository
	notifier     Notifier
	topicName    string
	subName      string

	// Deduplication: the portal redelivers events. Only the most recent
	// processedCap message ids are remembered; older ones age out in
	// arrival order so the map stays bounded for the process lifetime.
	mu        sync.Mutex
	processed map[string]bool
	order     []string
}

// processedCap bounds the event dedupe window.
const processedCap = 10000

func NewEventService(projectID, topicName string, properties proprepo.PropertyRepository, notifier Notifier, credentialsFile string) (*EventService, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &EventService{
		pubsubClient: client,
		properties:   properties,
		notifier:     notifier,
		topicName:    topicName,
		subName:      topicName + "-sub", // Convention: topic-sub
		processed:    make(map[string]bool),
	}, nil
}

func (s *EventService) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting listing event service with topic: %s, subscription: %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	log.Printf("[PubSub] Listening for listing events on subscription: %s", s.subName)
	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

// firstDelivery records the message id and reports whether this is its
// first delivery within the dedupe window.
func (s *EventService) firstDelivery(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.processed[id] {
		return false
	}
	s.processed[id] = true
	s.order = append(s.order, id)
	if len(s.order) > processedCap {
		delete(s.processed, s.order[0])
		s.order = s.order[1:]
	}
	return true
}

func (s *EventService) handleMessage(ctx context.Context, msg *pubsub.Message) {
	if !s.firstDelivery(msg.ID) {
		return
	}

	var event ListingEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		log.Printf("[PubSub] Failed to unmarshal listing event: %v", err)
		return
	}

	log.Printf("[PubSub] Received %s event for listing %s", event.Event, event.ListingID)

	property, err := s.properties.FindByPfListingID(event.ListingID)
	if err != nil {
		log.Printf("[PubSub] Error finding property for listing %s: %v", event.ListingID, err)
		return
	}
	if property == nil {
		log.Printf("[PubSub] No local property for listing %s, ignoring event", event.ListingID)
		return
	}

	switch event.Event {
	case "verification.updated":
		property.PfVerificationStatus = event.VerificationStatus
		notifType := notifdomain.NotificationInfo
		if event.VerificationStatus == "rejected" {
			notifType = notifdomain.NotificationWarning
		}
		s.notifier.Notify(notifType, "Verification status changed",
			fmt.Sprintf("Listing for %s is now %s", property.ReferenceNo, event.VerificationStatus), property.ID)
	case "quality.updated":
		property.PfQualityScore = event.QualityScore
	case "listing.state_changed":
		if event.Published != nil {
			property.PfPublished = *event.Published
			if !*event.Published {
				s.notifier.Notify(notifdomain.NotificationWarning, "Listing unpublished by portal",
					fmt.Sprintf("The portal took the listing for %s offline", property.ReferenceNo), property.ID)
			}
		}
	default:
		log.Printf("[PubSub] Unknown event type %q for listing %s", event.Event, event.ListingID)
		return
	}

	if err := s.properties.Update(property); err != nil {
		log.Printf("[PubSub] Failed to persist event for listing %s: %v", event.ListingID, err)
	}
}
