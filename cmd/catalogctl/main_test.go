package main

import "testing"

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"frobnicate"}); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunWithoutArguments(t *testing.T) {
	if code := run(nil); code != 2 {
		t.Fatalf("exit code = %d, want 2", code)
	}
}

func TestRunHelp(t *testing.T) {
	if code := run([]string{"help"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestListAgainstMemoryDriver(t *testing.T) {
	t.Setenv("CATALOGCORE_STORAGE_DRIVER", "memory")
	if code := run([]string{"list", "-json"}); code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}
}

func TestListRejectsBadStockFilter(t *testing.T) {
	t.Setenv("CATALOGCORE_STORAGE_DRIVER", "memory")
	if code := run([]string{"list", "-stock", "sideways"}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestAddRequiresName(t *testing.T) {
	t.Setenv("CATALOGCORE_STORAGE_DRIVER", "memory")
	if code := run([]string{"add"}); code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
