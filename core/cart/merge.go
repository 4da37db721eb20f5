package cart

import (
	"context"
	"fmt"

	"github.com/joaofortes502/E-commerce-sub000/core/identity"
	"github.com/sirupsen/logrus"
)

// Merger migrates an anonymous cart into a user's cart at login. The
// merge is best-effort: catalog validity is deliberately not checked
// here (that is the reconciler's and the checkout engine's job on the
// next read), and a partial failure must not block login.
type Merger struct {
	Storage Storage
	Log     logrus.FieldLogger
}

// Merge moves every line of from into to. A product already in the
// target cart gets the quantities summed and keeps the target's
// captured price; a new product moves as-is. The anonymous cart is
// cleared afterward: its identity is being retired.
//
// Each line moves through Storage.Move, which attaches and detaches as
// one atomic step. A failed move leaves the line in the source cart, so
// re-running after a partial failure only re-moves lines still present
// there. No line is ever applied twice.
func (m *Merger) Merge(ctx context.Context, from, to identity.Identity) (int, error) {
	src, err := m.Storage.Get(ctx, from)
	if err != nil {
		return 0, fmt.Errorf("loading cart[%s] to merge: %w", from.Key(), err)
	}
	if src.IsEmpty() {
		return 0, nil
	}

	var moved int
	var failed error
	for _, it := range src.Items {
		if err := m.Storage.Move(ctx, from, to, it.ProductID); err != nil {
			// The line stays in the anonymous cart; a re-run picks
			// it up. Not retried automatically.
			m.Log.WithFields(logrus.Fields{
				"from":    from.Key(),
				"to":      to.Key(),
				"product": it.ProductID,
				"message": err,
			}).Error("merge: moving line failed")
			failed = err
			continue
		}

		moved++
	}

	if failed != nil {
		return moved, fmt.Errorf("merging cart[%s] into cart[%s]: %w", from.Key(), to.Key(), failed)
	}

	if err := m.Storage.Clear(ctx, from); err != nil {
		return moved, fmt.Errorf("retiring cart[%s] after merge: %w", from.Key(), err)
	}
	return moved, nil
}
