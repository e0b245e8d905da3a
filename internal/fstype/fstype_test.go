//go:build linux

package fstype

import "testing"

func TestKnownAnywhereMatchesMagicTable(t *testing.T) {
	for _, name := range []string{"ext2/ext3/ext4", "btrfs", "xfs", "nfs", "tmpfs", "overlayfs"} {
		if !KnownAnywhere(name) {
			t.Errorf("KnownAnywhere(%q) = false, want true", name)
		}
	}
}

func TestKnownAnywhereRejectsUnknownName(t *testing.T) {
	if KnownAnywhere("totally-bogus-fstype") {
		t.Error("KnownAnywhere on a name absent from the magic table should be false")
	}
}

func TestOfUnknownPathReturnsUnknown(t *testing.T) {
	if got := Of("/does/not/exist/at/all"); got != "unknown" {
		t.Errorf("Of on a nonexistent path = %q, want %q", got, "unknown")
	}
}
