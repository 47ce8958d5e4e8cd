package memory

import (
	"testing"

	"github.com/lemmi/glubblog/backend/backendtest"
)

func TestStore(t *testing.T) {
	backendtest.Run(t, func(t *testing.T) backendtest.Backend {
		return New()
	})
}
