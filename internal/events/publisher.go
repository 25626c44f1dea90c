// Package events publishes marketplace events to NATS for archival and
// downstream consumers. Publishing is best effort: a broker outage never
// fails the mutation that produced the event.
package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// SubjectPrefix namespaces every marketplace event subject.
const SubjectPrefix = "market.events."

// Event types emitted by the marketplace.
const (
	NftCreated           = "nft_created"
	NftUpdated           = "nft_updated"
	NftDeleted           = "nft_deleted"
	NftSold              = "nft_sold"
	NftPaidOut           = "nft_paid_out"
	NftMinted            = "nft_minted"
	OwnershipTransferred = "ownership_transferred"
)

// Publisher writes events to NATS. A nil *Publisher is valid and publishes
// nothing.
type Publisher struct {
	nc *nats.Conn
}

// Connect establishes a NATS connection.
func Connect(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{nc: nc}, nil
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.nc.Close()
}

// Publish sends one event on market.events.<eventType>.
func (p *Publisher) Publish(eventType string, payload interface{}) {
	if p == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("events: encode %s: %v", eventType, err)
		return
	}
	if err := p.nc.Publish(SubjectPrefix+eventType, data); err != nil {
		log.Printf("events: publish %s: %v", eventType, err)
	}
}
