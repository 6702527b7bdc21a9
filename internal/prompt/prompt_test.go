package prompt

import (
	"strings"
	"testing"

	"github.com/proposalstudio/proposalstudio/internal/ledger"
)

func TestCompileDeterministic(t *testing.T) {
	t.Parallel()

	turns := []ledger.Turn{
		ledger.NewUserTurn("NPS dropped 12 points"),
		ledger.NewAssistantTurn("noted"),
		ledger.NewUserTurn("manual processes are a problem"),
	}
	opts := Options{Depth: Depth15, ToneInstitutional: true, SuppressMarketing: true}

	first := Compile(turns, opts)
	for i := 0; i < 10; i++ {
		if got := Compile(turns, opts); got != first {
			t.Fatalf("Compile() is not deterministic: run %d differs", i)
		}
	}
}

func TestCompileDepthDirective(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		depth Depth
		want  string
	}{
		{name: "summary deck", depth: Depth15, want: "Generate a 15-slide executive proposal"},
		{name: "full deck", depth: Depth30, want: "Generate a 30-slide executive proposal"},
	}

	turns := []ledger.Turn{ledger.NewUserTurn("some context")}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Compile(turns, Options{Depth: tt.depth})
			if !strings.Contains(got, tt.want) {
				t.Errorf("Compile() missing directive %q", tt.want)
			}
			// The format contract must carry the same count.
			if !strings.Contains(got, "numbered 1 through "+tt.depth.String()[:2]) {
				t.Errorf("Compile() numbering scheme does not match depth %d", tt.depth.Sections())
			}
		})
	}
}

func TestCompileContextBlock(t *testing.T) {
	t.Parallel()

	turns := []ledger.Turn{
		ledger.NewUserTurn("NPS dropped 12 points"),
		ledger.Acknowledgement(),
		ledger.NewUserTurn("manual processes are a problem"),
	}
	got := Compile(turns, Options{Depth: Depth15})

	// Exactly one context block reproducing both user strings in order;
	// assistant turns are excluded.
	if n := strings.Count(got, "Client Context:"); n != 1 {
		t.Fatalf("Compile() contains %d context blocks, want 1", n)
	}
	wantBlock := "Client Context:\nNPS dropped 12 points\n\nmanual processes are a problem"
	if !strings.Contains(got, wantBlock) {
		t.Errorf("Compile() context block missing or out of order:\n%s", got)
	}
	if strings.Contains(got, "Context received and noted") {
		t.Error("Compile() leaked an assistant turn into the context block")
	}
	if !strings.Contains(got, "Return ONLY raw HTML") {
		t.Error("Compile() missing the raw output contract")
	}
}

func TestCompileToneDirectives(t *testing.T) {
	t.Parallel()

	turns := []ledger.Turn{ledger.NewUserTurn("context")}

	tests := []struct {
		name       string
		opts       Options
		wantTone   string
		suppressed bool
	}{
		{
			name:       "institutional with suppression",
			opts:       Options{Depth: Depth15, ToneInstitutional: true, SuppressMarketing: true},
			wantTone:   toneInstitutional,
			suppressed: true,
		},
		{
			name:     "approachable without suppression",
			opts:     Options{Depth: Depth15},
			wantTone: toneApproachable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Compile(turns, tt.opts)
			if !strings.Contains(got, tt.wantTone) {
				t.Errorf("Compile() missing tone directive %q", tt.wantTone)
			}
			if has := strings.Contains(got, suppressMarketing); has != tt.suppressed {
				t.Errorf("Compile() marketing directive present = %t, want %t", has, tt.suppressed)
			}
		})
	}
}
