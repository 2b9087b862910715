package transform

import (
	"strings"
	"testing"
)

const sampleEntry = `dn: uid=alice,ou=people,dc=example,dc=com
uid: alice
mail: alice@example.com
zimbraMailHost: old.example.com
zimbraMailTransport: lmtp:old.example.com:7025
zimbraPrefChildVisibleAccount: child@example.com
description: regular user
cn: Alice`

func TestRewriteForStoreReplacesMailHost(t *testing.T) {
	got := RewriteForStore("zimbraMailHost: old.example.com", "newstore.example.com")
	want := "zimbraMailHost: newstore.example.com"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteForStoreReplacesTransport(t *testing.T) {
	got := RewriteForStore("zimbraMailTransport: lmtp:old.example.com:7025", "newstore.example.com")
	want := "zimbraMailTransport: lmtp:newstore.example.com:7025"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRewriteForStoreDropsChildVisibleAccount(t *testing.T) {
	got := RewriteForStore(sampleEntry, "newstore.example.com")
	if strings.Contains(got, "zimbraPrefChildVisibleAccount") {
		t.Errorf("deprecated attribute should be absent from output:\n%s", got)
	}
}

func TestRewriteForStorePreservesOrder(t *testing.T) {
	got := RewriteForStore(sampleEntry, "newstore.example.com")
	want := `dn: uid=alice,ou=people,dc=example,dc=com
uid: alice
mail: alice@example.com
zimbraMailHost: newstore.example.com
zimbraMailTransport: lmtp:newstore.example.com:7025
description: regular user
cn: Alice`
	if got != want {
		t.Errorf("rewritten entry mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestRewriteForStoreLeavesUnrelatedLines(t *testing.T) {
	entry := "mail: alice@example.com\ndescription: zimbraMailHost mentioned mid-line"
	if got := RewriteForStore(entry, "s"); got != entry {
		t.Errorf("non-prefix lines must pass through unchanged: %q", got)
	}
}
