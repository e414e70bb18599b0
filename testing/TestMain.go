package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		_ = os.Setenv("COSTBOOK_TEST_MODE", "1")
		if os.Getenv("BLOB_FS_ROOT") == "" {
			_ = os.Setenv("BLOB_FS_ROOT", os.TempDir())
		}
	})
}

func init() {
	ensureTestMode()
}

func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
