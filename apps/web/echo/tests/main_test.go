package tests

import (
	"os"
	"testing"

	"github.com/kymoh/moviematrix/core"
	appfs "github.com/kymoh/moviematrix/fs"
	"github.com/kymoh/moviematrix/services/logger"
	"github.com/kymoh/moviematrix/tests"
)

func TestMain(m *testing.M) {
	core.ParseEmailTemplates(appfs.FS, testutil.NewConfig(), logger.NewTestLogger())
	os.Exit(m.Run())
}
