package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const defaultLeaseTTL = 10 * time.Minute

// leaseDoc is the advisory lock lease. A lease is held until released or
// until ExpiresAt passes; expiry lets the fleet recover from a holder that
// died without unlocking.
type leaseDoc struct {
	Key        string    `firestore:"key"`
	HolderID   string    `firestore:"holder_id"`
	AcquiredAt time.Time `firestore:"acquired_at"`
	ExpiresAt  time.Time `firestore:"expires_at"`
}

// advisoryMutex implements interfaces.AdvisoryMutex on a Firestore lease
// document, created conditionally inside a transaction. Each repository
// instance has its own holder identity so a replica never releases a lease
// it does not hold.
type advisoryMutex struct {
	client           *firestore.Client
	collectionPrefix string
	holderID         string
	leaseTTL         time.Duration
}

func newAdvisoryMutex(client *firestore.Client) *advisoryMutex {
	return &advisoryMutex{
		client:   client,
		holderID: uuid.New().String(),
		leaseTTL: defaultLeaseTTL,
	}
}

func (m *advisoryMutex) collection() *firestore.CollectionRef {
	return m.client.Collection(m.collectionPrefix + "locks")
}

func (m *advisoryMutex) TryLock(ctx context.Context, key string) (bool, error) {
	acquired := false
	err := m.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := m.collection().Doc(key)
		now := time.Now().UTC()

		doc, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to read lock lease", goerr.V("key", key))
		}

		if err == nil {
			var lease leaseDoc
			if derr := doc.DataTo(&lease); derr != nil {
				return goerr.Wrap(derr, "failed to unmarshal lock lease", goerr.V("key", key))
			}
			if lease.ExpiresAt.After(now) {
				// Held by a live holder, someone else runs this cycle
				acquired = false
				return nil
			}
		}

		if err := tx.Set(docRef, &leaseDoc{
			Key:        key,
			HolderID:   m.holderID,
			AcquiredAt: now,
			ExpiresAt:  now.Add(m.leaseTTL),
		}); err != nil {
			return goerr.Wrap(err, "failed to write lock lease", goerr.V("key", key))
		}
		acquired = true
		return nil
	})
	if err != nil {
		// A transaction aborted by contention means another replica won the
		// race for this cycle, which is the normal non-acquisition case.
		if status.Code(err) == codes.Aborted {
			return false, nil
		}
		return false, err
	}
	return acquired, nil
}

func (m *advisoryMutex) Unlock(ctx context.Context, key string) error {
	return m.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		docRef := m.collection().Doc(key)

		doc, err := tx.Get(docRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil
			}
			return goerr.Wrap(err, "failed to read lock lease", goerr.V("key", key))
		}

		var lease leaseDoc
		if err := doc.DataTo(&lease); err != nil {
			return goerr.Wrap(err, "failed to unmarshal lock lease", goerr.V("key", key))
		}
		if lease.HolderID != m.holderID {
			// Lease expired and was taken over; not ours to release anymore
			return nil
		}

		if err := tx.Delete(docRef); err != nil {
			return goerr.Wrap(err, "failed to delete lock lease", goerr.V("key", key))
		}
		return nil
	})
}
