package testutil

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/andrebq/authbox/directory"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireDirectory opens an empty user directory inside a temp dir,
// the returned func closes it and removes every file.
func AcquireDirectory(ctx context.Context, t TestLog) (*directory.Directory, func()) {
	dir, err := ioutil.TempDir("", "authbox-tests")
	if err != nil {
		t.Fatal(err)
	}
	d, err := directory.Open(ctx, filepath.Join(dir, "users.db"))
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return d, func() {
		err := d.Close()
		if err != nil {
			t.Log("unable to close directory", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}

// AcquirePopulatedDirectory is AcquireDirectory plus a loader that runs
// before the directory is handed to the test.
func AcquirePopulatedDirectory(ctx context.Context, t TestLog, loader func(context.Context, *directory.Directory) error) (*directory.Directory, func()) {
	d, cleanup := AcquireDirectory(ctx, t)
	if loader != nil {
		if err := loader(ctx, d); err != nil {
			cleanup()
			t.Fatal(err)
		}
	}
	return d, cleanup
}
