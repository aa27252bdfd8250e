package memory

import (
	"testing"

	"github.com/marmos91/dittolist/pkg/store"
	storetesting "github.com/marmos91/dittolist/pkg/store/testing"
)

// TestMemoryStore runs the complete store test suite against MemoryStore.
func TestMemoryStore(t *testing.T) {
	suite := &storetesting.StoreTestSuite{
		NewStore: func(t *testing.T) store.Store {
			return New(Config{})
		},
	}

	suite.Run(t)
}
