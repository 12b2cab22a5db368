package document

import (
	"github.com/foxseedlab/kikitori/internal/config"
	"github.com/foxseedlab/kikitori/internal/document"
	"github.com/samber/do/v2"
)

// RegisterDI provides the store only when FIRESTORE_PROJECT_ID is set.
func RegisterDI(injector do.Injector) {
	cfg := do.MustInvoke[*config.Config](injector)
	if !cfg.FirestoreEnabled() {
		return
	}
	do.Provide(injector, func(i do.Injector) (document.Store, error) {
		return NewFirestoreStore(FirestoreConfig{
			ProjectID:       cfg.FirestoreProjectID,
			CredentialsJSON: cfg.FirestoreCredentialsJSON,
		}), nil
	})
}
