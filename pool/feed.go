package pool

import (
	"context"
	"fmt"

	"github.com/halcyon-labs/suipool/suiclient"
	"github.com/halcyon-labs/suipool/types"
)

// ObjectFeed is a restartable paginated producer of object batches scoped to
// one owner. Each Next call yields one batch; once the backing endpoint
// reports no further page the feed is terminal and Next keeps returning
// (nil, false, nil). Not safe for concurrent use.
type ObjectFeed struct {
	client suiclient.Client
	owner  types.Address
	cursor *string
	done   bool
}

// NewObjectFeed creates a feed over owner's objects, starting at the first
// page.
func NewObjectFeed(client suiclient.Client, owner types.Address) *ObjectFeed {
	return &ObjectFeed{client: client, owner: owner}
}

// Done reports whether the feed has yielded its final batch.
func (f *ObjectFeed) Done() bool { return f.done }

// Next returns the next non-empty batch of owned objects, or ok=false once
// the feed is exhausted. A page entry carrying an error cell fails the call
// with a BackendObjectError.
func (f *ObjectFeed) Next(ctx context.Context) (map[types.ObjectID]types.OwnedObject, bool, error) {
	for !f.done {
		page, err := f.client.ListOwnedObjects(ctx, f.owner, f.cursor)
		if err != nil {
			return nil, false, fmt.Errorf("fetch owned objects: %w", err)
		}
		f.cursor = page.NextCursor
		if !page.HasNextPage {
			f.done = true
		}
		batch := make(map[types.ObjectID]types.OwnedObject, len(page.Data))
		for _, entry := range page.Data {
			if entry.Error != nil {
				return nil, false, &BackendObjectError{Code: entry.Error.Code, ObjectID: entry.Error.ObjectID}
			}
			if entry.Data == nil {
				return nil, false, &BackendObjectError{Code: "missingData"}
			}
			batch[entry.Data.ObjectID] = entry.Data.Owned()
		}
		// The backend may emit an empty page with a continuation cursor;
		// keep pulling so callers only ever see non-empty batches.
		if len(batch) > 0 {
			return batch, true, nil
		}
	}
	return nil, false, nil
}
