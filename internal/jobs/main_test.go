package jobs

import (
	"os"
	"testing"

	"github.com/emrgen/programtree/internal/tester"
)

func TestMain(m *testing.M) {
	tester.Setup()
	code := m.Run()
	tester.RemoveDBFile()
	os.Exit(code)
}
