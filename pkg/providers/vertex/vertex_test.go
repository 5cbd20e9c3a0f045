package vertex

import "testing"

func TestNewDefaults(t *testing.T) {
	p := New(Config{Project: "my-project"})
	if p.ProviderName() != "vertex" {
		t.Errorf("name = %q, want %q", p.ProviderName(), "vertex")
	}

	named := New(Config{Name: "vertex-eu", Project: "my-project", Location: "europe-west1"})
	if named.ProviderName() != "vertex-eu" {
		t.Errorf("name = %q", named.ProviderName())
	}
}
