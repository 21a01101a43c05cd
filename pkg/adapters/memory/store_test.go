package memory_test

import (
	"testing"

	"github.com/aretw0/act/pkg/adapters/memory"
	"github.com/aretw0/act/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	tests.RunDocumentStoreContract(t, store)
}
